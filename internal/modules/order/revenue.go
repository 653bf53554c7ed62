// README: Revenue aggregation over realized orders.
package order

import (
	"fmt"
	"sort"
	"time"

	"waslhaa/internal/types"
)

// RevenueFilter narrows the aggregation. Zero values mean "no filter";
// the time window applies to the delivery time and is half-open [From, To).
type RevenueFilter struct {
	From     *time.Time
	To       *time.Time
	ZoneID   string
	DriverID types.ID
}

// Key identifies the filter in the revenue cache.
func (f RevenueFilter) Key() string {
	ts := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("revenue:%s:%s:%s:%s", ts(f.From), ts(f.To), f.ZoneID, f.DriverID)
}

// Match reports whether a realized order falls inside the filter.
func (f RevenueFilter) Match(o Order) bool {
	if !o.Status.Realized() {
		return false
	}
	if f.ZoneID != "" && o.ZoneID != f.ZoneID {
		return false
	}
	if f.DriverID != "" && (o.DriverID == nil || *o.DriverID != f.DriverID) {
		return false
	}
	if f.From != nil || f.To != nil {
		if o.DeliveredAt == nil {
			return false
		}
		if f.From != nil && o.DeliveredAt.Before(*f.From) {
			return false
		}
		if f.To != nil && !o.DeliveredAt.Before(*f.To) {
			return false
		}
	}
	return true
}

type DriverEarnings struct {
	DriverID types.ID
	Orders   int
	Earned   types.Money
}

type Revenue struct {
	Orders      int
	Price       types.Money
	Commission  types.Money
	OperatorCut types.Money
	DriverCut   types.Money
	Drivers     []DriverEarnings
	ComputedAt  time.Time
}

// Summarize totals the realized orders among orders; everything else is ignored.
func Summarize(orders []Order, currency string, now time.Time) Revenue {
	zero := types.Money{Currency: currency}
	r := Revenue{Price: zero, Commission: zero, OperatorCut: zero, DriverCut: zero, ComputedAt: now.UTC()}
	byDriver := make(map[types.ID]*DriverEarnings)
	for _, o := range orders {
		if !o.Status.Realized() {
			continue
		}
		r.Orders++
		r.Price = r.Price.Add(o.Price)
		r.Commission = r.Commission.Add(o.Commission)
		r.OperatorCut = r.OperatorCut.Add(o.OperatorCut)
		r.DriverCut = r.DriverCut.Add(o.DriverCut)
		if o.DriverID == nil {
			continue
		}
		d, ok := byDriver[*o.DriverID]
		if !ok {
			d = &DriverEarnings{DriverID: *o.DriverID, Earned: zero}
			byDriver[*o.DriverID] = d
		}
		d.Orders++
		d.Earned = d.Earned.Add(o.DriverCut)
	}
	r.Drivers = make([]DriverEarnings, 0, len(byDriver))
	for _, d := range byDriver {
		r.Drivers = append(r.Drivers, *d)
	}
	sort.Slice(r.Drivers, func(i, j int) bool {
		if r.Drivers[i].Earned.Amount != r.Drivers[j].Earned.Amount {
			return r.Drivers[i].Earned.Amount > r.Drivers[j].Earned.Amount
		}
		return r.Drivers[i].DriverID < r.Drivers[j].DriverID
	})
	return r
}
