package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"coswig/internal/domain"
	apperrors "coswig/internal/errors"
	"coswig/internal/order/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderUseCase interface {
	Create(ctx context.Context, in service.OrderInput) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, id int64, in service.OrderInput) (*domain.Order, error)
	Patch(ctx context.Context, id int64, fields map[string]any) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	BatchDelete(ctx context.Context, ids []int64) (int64, error)
	List(ctx context.Context, params service.ListParams) ([]domain.Order, error)
}

type OrderDTO struct {
	ID               int64   `json:"id"`
	CN               string  `json:"cn"`
	Character        string  `json:"character"`
	Contact          string  `json:"contact"`
	NeededDate       string  `json:"needed_date"`
	OrderDate        string  `json:"order_date"`
	CreatedAt        string  `json:"created_at"`
	DepositPaid      bool    `json:"deposit_paid"`
	FinalAmount      float64 `json:"final_amount"`
	ShippingIncluded bool    `json:"shipping_included"`
	BlankPurchased   bool    `json:"blank_purchased"`
	CakeBox          string  `json:"cake_box"`
	Status           string  `json:"status"`
}

func toDTO(o domain.Order) OrderDTO {
	return OrderDTO{
		ID:               o.ID,
		CN:               o.CN,
		Character:        o.Character,
		Contact:          o.Contact,
		NeededDate:       o.NeededDate.Format(domain.DateFormat),
		OrderDate:        o.OrderDate.Format(domain.DateFormat),
		CreatedAt:        o.CreatedAt.Format(domain.TimestampFormat),
		DepositPaid:      o.DepositPaid,
		FinalAmount:      o.FinalAmount,
		ShippingIncluded: o.ShippingIncluded,
		BlankPurchased:   o.BlankPurchased,
		CakeBox:          o.CakeBox,
		Status:           string(o.Status),
	}
}

type batchDeleteRequest struct {
	OrderIDs []int64 `json:"order_ids"`
}

type Controller struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewController(useCase OrderUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ListParams{
		SortKey:       q.Get("sort"),
		SortDirection: q.Get("order"),
		Platform:      q.Get("platform"),
		ShowCompleted: q.Get("show_completed") == "true",
	}

	orders, err := c.useCase.List(r.Context(), params)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toDTO(o))
	}

	c.writeJSON(w, http.StatusOK, dtos)
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	order, err := c.useCase.Get(r.Context(), id)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toDTO(*order))
}

func (c *Controller) HandleCreate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var in service.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.Create(r.Context(), in)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, toDTO(*order))
}

func (c *Controller) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var in service.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.Update(r.Context(), id, in)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, toDTO(*order))
}

func (c *Controller) HandlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be a JSON object",
		})
		return
	}

	order, err := c.useCase.Patch(r.Context(), id, fields)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   toDTO(*order),
	})
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.orderID(w, r)
	if !ok {
		return
	}

	if err := c.useCase.Delete(r.Context(), id); err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *Controller) HandleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	deleted, err := c.useCase.BatchDelete(r.Context(), req.OrderIDs)
	if err != nil {
		c.handleError(w, err, c.logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": deleted,
	})
}

func (c *Controller) orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid order id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (c *Controller) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "NOT_FOUND",
			"message": err.Error(),
		})
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

type validationErrorResponse struct {
	Success bool                         `json:"success"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *Controller) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
