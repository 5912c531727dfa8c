package domain

import "time"

// Date layouts used everywhere an order crosses a serialization boundary
// (API payloads, JSON/CSV exports, the store itself).
const (
	DateFormat      = "2006-01-02"
	TimestampFormat = "2006-01-02 15:04:05"
)

const DefaultCakeBox = "不需要"

type Status string

const (
	StatusPending      Status = "待制作"
	StatusInProduction Status = "制作中"
	StatusCompleted    Status = "已完成"
	StatusShipped      Status = "已发货"
	StatusCancelled    Status = "已取消"
)

// KnownStatuses is the label set the original shop used. The store accepts
// values outside it; callers that bucket by status treat anything else as an
// unknown label rather than rejecting it.
var KnownStatuses = []Status{
	StatusPending,
	StatusInProduction,
	StatusCompleted,
	StatusShipped,
	StatusCancelled,
}

func (s Status) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Finished reports whether the order counts toward realized revenue.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusShipped
}

// Open reports whether the order still carries uncollected revenue.
func (s Status) Open() bool {
	return !s.Finished() && s != StatusCancelled
}

type Order struct {
	ID               int64
	CN               string
	Character        string
	Contact          string
	NeededDate       time.Time
	OrderDate        time.Time
	CreatedAt        time.Time
	DepositPaid      bool
	FinalAmount      float64
	ShippingIncluded bool
	BlankPurchased   bool
	CakeBox          string
	Status           Status
}

// DedupKey identifies an order for import de-duplication: two records with the
// same customer, character and requested date are considered the same order
// regardless of id.
func (o Order) DedupKey() string {
	return o.CN + "\x00" + o.Character + "\x00" + o.NeededDate.Format(DateFormat)
}
