package service

import (
	"sort"
	"time"

	"coswig/internal/domain"
)

// All functions here are pure: they derive figures from a snapshot of the
// order set and keep no state. Every division guards its denominator and
// yields 0 instead of failing.

type Summary struct {
	TotalOrders       int     `json:"total_orders"`
	CompletedOrders   int     `json:"completed_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

func Summarize(orders []domain.Order) Summary {
	s := Summary{TotalOrders: len(orders)}
	for _, o := range orders {
		if o.Status.Finished() {
			s.CompletedOrders++
			s.TotalRevenue += o.FinalAmount
		}
	}
	if s.CompletedOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.CompletedOrders)
	}
	return s
}

// statusLabels is the fixed bucket set reporting pages show. Orders with a
// status outside it (制作中, free-text labels) simply do not land in a bucket.
var statusLabels = []domain.Status{
	domain.StatusPending,
	domain.StatusCompleted,
	domain.StatusShipped,
	domain.StatusCancelled,
}

func StatusBreakdown(orders []domain.Order) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(statusLabels))
	for _, label := range statusLabels {
		counts[label] = 0
	}
	for _, o := range orders {
		if _, ok := counts[o.Status]; ok {
			counts[o.Status]++
		}
	}
	return counts
}

type PlatformStat struct {
	Platform string  `json:"platform"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

// PlatformBreakdown reports, per contact platform, how many orders came in
// and how much completed revenue they brought, busiest platform first.
func PlatformBreakdown(orders []domain.Order) []PlatformStat {
	byPlatform := make(map[string]*PlatformStat)
	for _, o := range orders {
		stat, ok := byPlatform[o.Contact]
		if !ok {
			stat = &PlatformStat{Platform: o.Contact}
			byPlatform[o.Contact] = stat
		}
		stat.Orders++
		if o.Status.Finished() {
			stat.Revenue += o.FinalAmount
		}
	}

	stats := make([]PlatformStat, 0, len(byPlatform))
	for _, stat := range byPlatform {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Orders != stats[j].Orders {
			return stats[i].Orders > stats[j].Orders
		}
		return stats[i].Platform < stats[j].Platform
	})
	return stats
}

type MonthlyPoint struct {
	Month     string  `json:"month"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	GrowthPct float64 `json:"growth_pct"`
}

// MonthlyRevenue groups completed orders by the calendar month of their
// requested date and reports revenue, count and month-over-month growth.
// Growth is 0 for the first month and whenever the previous month's revenue
// is 0.
func MonthlyRevenue(orders []domain.Order) []MonthlyPoint {
	byMonth := make(map[string]*MonthlyPoint)
	for _, o := range orders {
		if !o.Status.Finished() {
			continue
		}
		month := o.NeededDate.Format("2006-01")
		point, ok := byMonth[month]
		if !ok {
			point = &MonthlyPoint{Month: month}
			byMonth[month] = point
		}
		point.Revenue += o.FinalAmount
		point.Orders++
	}

	points := make([]MonthlyPoint, 0, len(byMonth))
	for _, point := range byMonth {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Month < points[j].Month
	})

	for i := 1; i < len(points); i++ {
		prev := points[i-1].Revenue
		if prev != 0 {
			points[i].GrowthPct = (points[i].Revenue - prev) / prev * 100
		}
	}
	return points
}

type PendingRevenue struct {
	Orders int     `json:"orders"`
	Amount float64 `json:"amount"`
}

// OutstandingRevenue totals the orders still in flight: neither finished
// nor cancelled.
func OutstandingRevenue(orders []domain.Order) PendingRevenue {
	var p PendingRevenue
	for _, o := range orders {
		if o.Status.Open() {
			p.Orders++
			p.Amount += o.FinalAmount
		}
	}
	return p
}

type Urgency string

const (
	UrgencyCompleted Urgency = "completed"
	UrgencyOverdue   Urgency = "overdue"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNormal    Urgency = "normal"
)

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysLeft is the whole number of days between today and the order's
// requested date; negative once the date has passed.
func DaysLeft(o domain.Order, today time.Time) int {
	return int(midnight(o.NeededDate).Sub(midnight(today)).Hours() / 24)
}

// Classify buckets an order for the deadline calendar. Finished orders are
// exempt from urgency regardless of date.
func Classify(o domain.Order, today time.Time) Urgency {
	if o.Status.Finished() {
		return UrgencyCompleted
	}
	days := DaysLeft(o, today)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 7:
		return UrgencyUrgent
	default:
		return UrgencyNormal
	}
}

type CalendarEntry struct {
	Order    domain.Order
	DaysLeft int
	Urgency  Urgency
}

// CalendarView classifies every order against today, earliest deadline first.
func CalendarView(orders []domain.Order, today time.Time) []CalendarEntry {
	entries := make([]CalendarEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, CalendarEntry{
			Order:    o,
			DaysLeft: DaysLeft(o, today),
			Urgency:  Classify(o, today),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Order.NeededDate.Equal(entries[j].Order.NeededDate) {
			return entries[i].Order.NeededDate.Before(entries[j].Order.NeededDate)
		}
		return entries[i].Order.ID < entries[j].Order.ID
	})
	return entries
}
