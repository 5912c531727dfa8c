package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"coswig/internal/domain"
	"coswig/internal/errors"
)

// ListFilter narrows a listing. Zero value means no filtering.
type ListFilter struct {
	Platform        string
	IncludeStatuses []domain.Status
	ExcludeStatuses []domain.Status
}

// HideCompleted excludes the statuses that count as finished work. Whether
// to apply it is the caller's decision; the store itself defaults to
// returning everything.
func (f ListFilter) HideCompleted() ListFilter {
	f.ExcludeStatuses = append(f.ExcludeStatuses, domain.StatusCompleted, domain.StatusShipped)
	return f
}

type SortKey string

const (
	SortByNeededDate SortKey = "needed_date"
	SortByOrderDate  SortKey = "order_date"
)

type Sort struct {
	Key        SortKey
	Descending bool
}

// ResolveSort maps raw sort parameters onto a Sort. Unrecognized keys fall
// back to ascending needed_date; any direction other than "desc" sorts
// ascending.
func ResolveSort(key, direction string) Sort {
	s := Sort{Key: SortByNeededDate}
	switch SortKey(key) {
	case SortByNeededDate, SortByOrderDate:
		s.Key = SortKey(key)
	default:
		return s
	}
	s.Descending = direction == "desc"
	return s
}

type SQLiteOrderRepository struct {
	db *sql.DB
}

func NewSQLiteOrderRepository(db *sql.DB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{db: db}
}

const orderColumns = `id, cn, character, contact, needed_date, order_date, created_at,
	       deposit_paid, final_amount, shipping_included, blank_purchased, cake_box, status`

const orderValuesClause = `(cn, character, contact, needed_date, order_date, created_at,
	 deposit_paid, final_amount, shipping_included, blank_purchased, cake_box, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (*domain.Order, error) {
	var (
		o          domain.Order
		neededDate string
		orderDate  string
		createdAt  string
		status     string
	)

	err := s.Scan(
		&o.ID, &o.CN, &o.Character, &o.Contact, &neededDate, &orderDate, &createdAt,
		&o.DepositPaid, &o.FinalAmount, &o.ShippingIncluded, &o.BlankPurchased, &o.CakeBox, &status,
	)
	if err != nil {
		return nil, err
	}

	if o.NeededDate, err = time.Parse(domain.DateFormat, neededDate); err != nil {
		return nil, fmt.Errorf("parsing needed_date %q: %w", neededDate, err)
	}
	if o.OrderDate, err = time.Parse(domain.DateFormat, orderDate); err != nil {
		return nil, fmt.Errorf("parsing order_date %q: %w", orderDate, err)
	}
	if o.CreatedAt, err = time.Parse(domain.TimestampFormat, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	o.Status = domain.Status(status)

	return &o, nil
}

func insertArgs(o domain.Order) []any {
	return []any{
		o.CN, o.Character, o.Contact,
		o.NeededDate.Format(domain.DateFormat),
		o.OrderDate.Format(domain.DateFormat),
		o.CreatedAt.Format(domain.TimestampFormat),
		o.DepositPaid, o.FinalAmount, o.ShippingIncluded, o.BlankPurchased,
		o.CakeBox, string(o.Status),
	}
}

func (r *SQLiteOrderRepository) Insert(ctx context.Context, o domain.Order) (int64, error) {
	query := `INSERT INTO orders ` + orderValuesClause

	result, err := r.db.ExecContext(ctx, query, insertArgs(o)...)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting inserted order id: %w", err)
	}

	return id, nil
}

// InsertBatch inserts all orders inside one transaction. Either every order
// lands or none does.
func (r *SQLiteOrderRepository) InsertBatch(ctx context.Context, orders []domain.Order) (int64, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO orders `+orderValuesClause)
	if err != nil {
		return 0, fmt.Errorf("preparing batch insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if _, err := stmt.ExecContext(ctx, insertArgs(o)...); err != nil {
			return 0, fmt.Errorf("inserting order for %q: %w", o.CN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch insert: %w", err)
	}

	return int64(len(orders)), nil
}

func (r *SQLiteOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return o, nil
}

// Update replaces every mutable field of an existing order. id and
// created_at are never touched.
func (r *SQLiteOrderRepository) Update(ctx context.Context, id int64, o domain.Order) error {
	query := `
		UPDATE orders
		SET cn = ?, character = ?, contact = ?, needed_date = ?, order_date = ?,
		    deposit_paid = ?, final_amount = ?, shipping_included = ?,
		    blank_purchased = ?, cake_box = ?, status = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		o.CN, o.Character, o.Contact,
		o.NeededDate.Format(domain.DateFormat),
		o.OrderDate.Format(domain.DateFormat),
		o.DepositPaid, o.FinalAmount, o.ShippingIncluded, o.BlankPurchased,
		o.CakeBox, string(o.Status), id,
	)
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// OrderPatch carries the fields a partial update may touch. Nil fields are
// left unchanged.
type OrderPatch struct {
	DepositPaid      *bool
	BlankPurchased   *bool
	Status           *domain.Status
	Contact          *string
	ShippingIncluded *bool
	CakeBox          *string
	NeededDate       *time.Time
}

func (p OrderPatch) Empty() bool {
	return p.DepositPaid == nil && p.BlankPurchased == nil && p.Status == nil &&
		p.Contact == nil && p.ShippingIncluded == nil && p.CakeBox == nil &&
		p.NeededDate == nil
}

func (r *SQLiteOrderRepository) ApplyPatch(ctx context.Context, id int64, p OrderPatch) error {
	if p.Empty() {
		// Nothing to write; still surface NotFound for a missing id.
		_, err := r.FindByID(ctx, id)
		return err
	}

	var (
		sets []string
		args []any
	)
	if p.DepositPaid != nil {
		sets = append(sets, "deposit_paid = ?")
		args = append(args, *p.DepositPaid)
	}
	if p.BlankPurchased != nil {
		sets = append(sets, "blank_purchased = ?")
		args = append(args, *p.BlankPurchased)
	}
	if p.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.Contact != nil {
		sets = append(sets, "contact = ?")
		args = append(args, *p.Contact)
	}
	if p.ShippingIncluded != nil {
		sets = append(sets, "shipping_included = ?")
		args = append(args, *p.ShippingIncluded)
	}
	if p.CakeBox != nil {
		sets = append(sets, "cake_box = ?")
		args = append(args, *p.CakeBox)
	}
	if p.NeededDate != nil {
		sets = append(sets, "needed_date = ?")
		args = append(args, p.NeededDate.Format(domain.DateFormat))
	}
	args = append(args, id)

	query := `UPDATE orders SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patching order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func (r *SQLiteOrderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// DeleteMany removes every order whose id is in ids and returns the count
// actually removed. Missing ids are simply not counted.
func (r *SQLiteOrderRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("batch deleting orders: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return deleted, nil
}

func (r *SQLiteOrderRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("deleting all orders: %w", err)
	}
	return nil
}

func buildWhere(f ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.Platform != "" {
		clauses = append(clauses, "contact = ?")
		args = append(args, f.Platform)
	}
	if len(f.IncludeStatuses) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?, ", len(f.IncludeStatuses)), ", ")
		clauses = append(clauses, "status IN ("+ph+")")
		for _, s := range f.IncludeStatuses {
			args = append(args, string(s))
		}
	}
	if len(f.ExcludeStatuses) > 0 {
		ph := strings.TrimSuffix(strings.Repeat("?, ", len(f.ExcludeStatuses)), ", ")
		clauses = append(clauses, "status NOT IN ("+ph+")")
		for _, s := range f.ExcludeStatuses {
			args = append(args, string(s))
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns the orders matching filter in the requested sort order.
// Dates are stored as ISO-8601 text, so lexicographic ORDER BY is
// chronological; ties break on id for a stable listing.
func (r *SQLiteOrderRepository) List(ctx context.Context, filter ListFilter, sort Sort) ([]domain.Order, error) {
	where, args := buildWhere(filter)

	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	key := SortByNeededDate
	if sort.Key == SortByOrderDate {
		key = SortByOrderDate
	}

	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(" ORDER BY %s %s, id ASC", key, direction)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

func (r *SQLiteOrderRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}

	return count, nil
}

func (r *SQLiteOrderRepository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		counts[domain.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status counts: %w", err)
	}

	return counts, nil
}
