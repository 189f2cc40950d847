/*
aggregate.go - Revenue aggregation engine

PURPOSE:
  Computes per-center rollups of booking counts, gross revenue, and
  collected-amount breakdowns over an optional time window. Read-only:
  scans the store, never mutates it, and holds no locks - the result is
  a snapshot that may not reflect writes committed during the scan.

LEGACY NORMALIZATION:
  Center ids were historically persisted as either numeric or text, so
  grouping runs on the canonical text form: bookings under 7 and "7"
  merge into one group.

RECONCILIATION:
  total_due = total_revenue - all collected amounts. It is not clamped;
  a negative value means over-collection and is surfaced as-is so
  operators can see reconciliation errors.
*/
package booking

import (
	"context"
	"sort"
)

// CenterSummary is the aggregated per-center rollup.
type CenterSummary struct {
	CenterKey  string
	CenterName string

	TotalBookings int
	TotalRevenue  Money

	PaidCount int
	// OutstandingCount merges Partial and Unpaid bookings.
	OutstandingCount int

	AgentCollected  Money
	CenterCollected Money
	AdminCollected  Money

	TotalDue Money
}

// CenterResolver resolves a canonical center key to a display name. The
// catalog owns center records; the engine only reads names through this.
type CenterResolver interface {
	CenterName(ctx context.Context, key string) (string, bool)
}

// Window is an optional inclusive creation-time filter.
type Window struct {
	Start int64
	End   int64
	Set   bool
}

// Aggregator computes center revenue summaries from the booking store.
type Aggregator struct {
	Store    Store
	Resolver CenterResolver
}

// ByCenter aggregates bookings (optionally restricted to the window)
// into one summary per center, resolving display names through the
// catalog. An unresolvable center renders a fallback label carrying the
// raw identifier rather than failing the aggregation.
func (a *Aggregator) ByCenter(ctx context.Context, w Window) ([]CenterSummary, error) {
	var (
		bookings []Booking
		err      error
	)
	if w.Set {
		bookings, err = a.Store.ListCreatedBetween(ctx, w.Start, w.End)
	} else {
		bookings, err = a.Store.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	summaries := SummarizeByCenter(bookings)
	for i := range summaries {
		name, ok := a.Resolver.CenterName(ctx, summaries[i].CenterKey)
		if !ok {
			name = "ID: " + summaries[i].CenterKey
		}
		summaries[i].CenterName = name
	}
	return summaries, nil
}

// SummarizeByCenter folds bookings into per-center summaries, grouping
// on the canonical center key. Pure; display names are left empty for
// the caller to resolve.
func SummarizeByCenter(bookings []Booking) []CenterSummary {
	groups := make(map[string]*CenterSummary)

	for _, b := range bookings {
		key := CanonicalID(b.CenterID)
		s, ok := groups[key]
		if !ok {
			s = &CenterSummary{
				CenterKey:       key,
				TotalRevenue:    ZeroMoney(),
				AgentCollected:  ZeroMoney(),
				CenterCollected: ZeroMoney(),
				AdminCollected:  ZeroMoney(),
			}
			groups[key] = s
		}

		s.TotalBookings++
		s.TotalRevenue = s.TotalRevenue.Add(b.Price)

		// Absent ledger fields scan as zero values, so old records
		// contribute nothing rather than erroring.
		s.AgentCollected = s.AgentCollected.Add(b.AgentCollected)
		s.CenterCollected = s.CenterCollected.Add(b.CenterCollected)
		s.AdminCollected = s.AdminCollected.Add(b.AdminCollected)

		if b.PaymentStatus == PaymentPaid {
			s.PaidCount++
		} else {
			s.OutstandingCount++
		}
	}

	out := make([]CenterSummary, 0, len(groups))
	for _, s := range groups {
		collected := s.AgentCollected.Add(s.CenterCollected).Add(s.AdminCollected)
		s.TotalDue = s.TotalRevenue.Sub(collected)
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		return lessCenterKey(out[i].CenterKey, out[j].CenterKey)
	})
	return out
}

// lessCenterKey orders numeric keys first by value, then text keys
// lexically, so report ordering is stable across runs and real center
// ids never interleave with legacy text identifiers.
func lessCenterKey(a, b string) bool {
	an, bn := IsDigits(a), IsDigits(b)
	if an != bn {
		return an
	}
	if an && len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
