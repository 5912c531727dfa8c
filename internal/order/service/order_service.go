package service

import (
	"context"
	"time"

	"coswig/internal/domain"
	apperrors "coswig/internal/errors"
	"coswig/internal/order/repository"

	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, o domain.Order) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, id int64, o domain.Order) error
	ApplyPatch(ctx context.Context, id int64, p repository.OrderPatch) error
	Delete(ctx context.Context, id int64) error
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
	List(ctx context.Context, filter repository.ListFilter, sort repository.Sort) ([]domain.Order, error)
}

// OrderInput is the full mutable field set, dates as YYYY-MM-DD text.
// Create and full update share it and its validation.
type OrderInput struct {
	CN               string  `json:"cn"`
	Character        string  `json:"character"`
	Contact          string  `json:"contact"`
	NeededDate       string  `json:"needed_date"`
	OrderDate        string  `json:"order_date"`
	DepositPaid      bool    `json:"deposit_paid"`
	FinalAmount      float64 `json:"final_amount"`
	ShippingIncluded bool    `json:"shipping_included"`
	BlankPurchased   bool    `json:"blank_purchased"`
	CakeBox          string  `json:"cake_box"`
	Status           string  `json:"status"`
}

// ListParams mirrors the listing page's query parameters. ShowCompleted
// keeps finished orders in the result; by default they are hidden, the way
// the shop's listing page worked.
type ListParams struct {
	SortKey       string
	SortDirection string
	Platform      string
	ShowCompleted bool
}

type OrderService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewOrderService(repo Repository, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func parseDate(field, value string, details *[]apperrors.ValidationDetail) time.Time {
	if value == "" {
		*details = append(*details, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " is required",
		})
		return time.Time{}
	}
	d, err := time.Parse(domain.DateFormat, value)
	if err != nil {
		*details = append(*details, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be a date in YYYY-MM-DD format",
		})
		return time.Time{}
	}
	return d
}

func (s *OrderService) orderFromInput(in OrderInput) (domain.Order, error) {
	var details []apperrors.ValidationDetail

	if in.CN == "" {
		details = append(details, apperrors.ValidationDetail{Field: "cn", Message: "cn is required"})
	}
	if in.Character == "" {
		details = append(details, apperrors.ValidationDetail{Field: "character", Message: "character is required"})
	}
	if in.Contact == "" {
		details = append(details, apperrors.ValidationDetail{Field: "contact", Message: "contact is required"})
	}
	neededDate := parseDate("needed_date", in.NeededDate, &details)
	orderDate := parseDate("order_date", in.OrderDate, &details)

	if len(details) > 0 {
		return domain.Order{}, apperrors.NewValidationError("validation failed", details...)
	}

	cakeBox := in.CakeBox
	if cakeBox == "" {
		cakeBox = domain.DefaultCakeBox
	}
	status := domain.Status(in.Status)
	if status == "" {
		status = domain.StatusPending
	}

	return domain.Order{
		CN:               in.CN,
		Character:        in.Character,
		Contact:          in.Contact,
		NeededDate:       neededDate,
		OrderDate:        orderDate,
		DepositPaid:      in.DepositPaid,
		FinalAmount:      in.FinalAmount,
		ShippingIncluded: in.ShippingIncluded,
		BlankPurchased:   in.BlankPurchased,
		CakeBox:          cakeBox,
		Status:           status,
	}, nil
}

func (s *OrderService) Create(ctx context.Context, in OrderInput) (*domain.Order, error) {
	o, err := s.orderFromInput(in)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = s.now()

	id, err := s.repo.Insert(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id

	s.logger.Info("order created",
		zap.Int64("orderId", id),
		zap.String("cn", o.CN),
		zap.String("character", o.Character))

	return &o, nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces every mutable field of an existing order.
func (s *OrderService) Update(ctx context.Context, id int64, in OrderInput) (*domain.Order, error) {
	o, err := s.orderFromInput(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, o); err != nil {
		return nil, err
	}

	s.logger.Info("order updated", zap.Int64("orderId", id))

	return s.repo.FindByID(ctx, id)
}

// Patch applies only the fields present in the mapping. Unknown keys are
// ignored; wrongly typed values and malformed dates are validation errors.
func (s *OrderService) Patch(ctx context.Context, id int64, fields map[string]any) (*domain.Order, error) {
	var (
		patch   repository.OrderPatch
		details []apperrors.ValidationDetail
	)

	boolField := func(key string, v any) *bool {
		b, ok := v.(bool)
		if !ok {
			details = append(details, apperrors.ValidationDetail{
				Field:   key,
				Message: key + " must be a boolean",
			})
			return nil
		}
		return &b
	}
	stringField := func(key string, v any) *string {
		str, ok := v.(string)
		if !ok {
			details = append(details, apperrors.ValidationDetail{
				Field:   key,
				Message: key + " must be a string",
			})
			return nil
		}
		return &str
	}

	for key, value := range fields {
		switch key {
		case "deposit_paid":
			patch.DepositPaid = boolField(key, value)
		case "blank_purchased":
			patch.BlankPurchased = boolField(key, value)
		case "shipping_included":
			patch.ShippingIncluded = boolField(key, value)
		case "status":
			if str := stringField(key, value); str != nil {
				status := domain.Status(*str)
				patch.Status = &status
			}
		case "contact":
			patch.Contact = stringField(key, value)
		case "cake_box":
			patch.CakeBox = stringField(key, value)
		case "needed_date":
			if str := stringField(key, value); str != nil {
				d, err := time.Parse(domain.DateFormat, *str)
				if err != nil {
					details = append(details, apperrors.ValidationDetail{
						Field:   key,
						Message: "needed_date must be a date in YYYY-MM-DD format",
					})
					continue
				}
				patch.NeededDate = &d
			}
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	if err := s.repo.ApplyPatch(ctx, id, patch); err != nil {
		return nil, err
	}

	s.logger.Info("order patched", zap.Int64("orderId", id))

	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.Int64("orderId", id))
	return nil
}

// BatchDelete removes every order whose id is in ids. An empty selection is
// a validation error; ids that do not exist are simply not counted.
func (s *OrderService) BatchDelete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("no orders selected", apperrors.ValidationDetail{
			Field:   "order_ids",
			Message: "order_ids must not be empty",
		})
	}

	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	s.logger.Info("orders batch deleted",
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", deleted))

	return deleted, nil
}

func (s *OrderService) List(ctx context.Context, params ListParams) ([]domain.Order, error) {
	filter := repository.ListFilter{Platform: params.Platform}
	if !params.ShowCompleted {
		filter = filter.HideCompleted()
	}

	return s.repo.List(ctx, filter, repository.ResolveSort(params.SortKey, params.SortDirection))
}
