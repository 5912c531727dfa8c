package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"coswig/internal/domain"
	apperrors "coswig/internal/errors"

	"go.uber.org/zap"
)

// importRecord uses pointers so that a field absent from the input is
// distinguishable from a zero value; required-field checks depend on it.
type importRecord struct {
	CN               *string  `json:"cn"`
	Character        *string  `json:"character"`
	Contact          *string  `json:"contact"`
	NeededDate       *string  `json:"needed_date"`
	OrderDate        *string  `json:"order_date"`
	DepositPaid      *bool    `json:"deposit_paid"`
	FinalAmount      *float64 `json:"final_amount"`
	ShippingIncluded *bool    `json:"shipping_included"`
	BlankPurchased   *bool    `json:"blank_purchased"`
	CakeBox          *string  `json:"cake_box"`
	CreatedAt        *string  `json:"created_at"`
	Status           *string  `json:"status"`
}

type ImportResult struct {
	Imported int
	Skipped  int
}

func (s *DataService) orderFromRecord(rec importRecord) (domain.Order, error) {
	requireString := func(field string, v *string) (string, error) {
		if v == nil || *v == "" {
			return "", fmt.Errorf("missing required field %s", field)
		}
		return *v, nil
	}

	var o domain.Order
	var err error

	if o.CN, err = requireString("cn", rec.CN); err != nil {
		return o, err
	}
	if o.Character, err = requireString("character", rec.Character); err != nil {
		return o, err
	}
	if o.Contact, err = requireString("contact", rec.Contact); err != nil {
		return o, err
	}

	neededDate, err := requireString("needed_date", rec.NeededDate)
	if err != nil {
		return o, err
	}
	if o.NeededDate, err = time.Parse(domain.DateFormat, neededDate); err != nil {
		return o, fmt.Errorf("unparseable needed_date %q", neededDate)
	}

	orderDate, err := requireString("order_date", rec.OrderDate)
	if err != nil {
		return o, err
	}
	if o.OrderDate, err = time.Parse(domain.DateFormat, orderDate); err != nil {
		return o, fmt.Errorf("unparseable order_date %q", orderDate)
	}

	if rec.FinalAmount == nil {
		return o, fmt.Errorf("missing required field final_amount")
	}
	o.FinalAmount = *rec.FinalAmount

	if rec.DepositPaid != nil {
		o.DepositPaid = *rec.DepositPaid
	}
	if rec.ShippingIncluded != nil {
		o.ShippingIncluded = *rec.ShippingIncluded
	}
	if rec.BlankPurchased != nil {
		o.BlankPurchased = *rec.BlankPurchased
	}

	o.CakeBox = domain.DefaultCakeBox
	if rec.CakeBox != nil && *rec.CakeBox != "" {
		o.CakeBox = *rec.CakeBox
	}
	o.Status = domain.StatusPending
	if rec.Status != nil && *rec.Status != "" {
		o.Status = domain.Status(*rec.Status)
	}

	// Keep the original creation time when the backup carries a parseable
	// one; otherwise stamp now.
	o.CreatedAt = s.now()
	if rec.CreatedAt != nil {
		if t, err := time.Parse(domain.TimestampFormat, *rec.CreatedAt); err == nil {
			o.CreatedAt = t
		}
	}

	return o, nil
}

// ImportJSON restores orders from a JSON array file. With clearExisting the
// store is emptied first; otherwise records matching an existing order on
// (cn, character, needed_date) are skipped. Records that fail to parse are
// skipped and counted, never fatal; everything that parses commits as one
// batch.
func (s *DataService) ImportJSON(ctx context.Context, filename string, clearExisting bool) (ImportResult, error) {
	var result ImportResult

	data, err := os.ReadFile(filename)
	if err != nil {
		return result, apperrors.NewIOError("reading import file", err)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return result, apperrors.NewValidationError("import file is not a JSON array of orders")
	}

	if clearExisting {
		if err := s.repo.DeleteAll(ctx); err != nil {
			return result, err
		}
		s.logger.Info("existing orders cleared before import")
	}

	existing := make(map[string]bool)
	if !clearExisting {
		current, err := s.snapshot(ctx)
		if err != nil {
			return result, err
		}
		for _, o := range current {
			existing[o.DedupKey()] = true
		}
	}

	var batch []domain.Order
	for i, rec := range records {
		o, err := s.orderFromRecord(rec)
		if err != nil {
			result.Skipped++
			s.logger.Warn("skipping unparseable import record",
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		if !clearExisting && existing[o.DedupKey()] {
			result.Skipped++
			s.logger.Info("skipping duplicate order",
				zap.String("cn", o.CN),
				zap.String("character", o.Character))
			continue
		}

		batch = append(batch, o)
	}

	if _, err := s.repo.InsertBatch(ctx, batch); err != nil {
		return ImportResult{Skipped: result.Skipped}, err
	}
	result.Imported = len(batch)

	s.logger.Info("orders imported",
		zap.String("file", filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))

	return result, nil
}
