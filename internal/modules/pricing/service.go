// README: Pricing engine computes fares and revenue splits.
package pricing

import (
	"math"
	"sync/atomic"

	"waslhaa/internal/types"
)

// ComputePrice prices a trip from a schedule. Same-village trips get the flat
// fare, everything else base + distance * per-km; the vehicle multiplier is
// applied and the result clamped to [MinPrice, MaxPrice].
func ComputePrice(distanceKm float64, s Schedule, vehicle types.VehicleType, sameVillage bool, currency string) (types.Money, Breakdown, error) {
	if !vehicle.Valid() {
		return types.Money{}, Breakdown{}, configErr("vehicle", "unknown vehicle type %q", vehicle)
	}
	multiplier, ok := s.Multipliers[vehicle]
	if !ok || multiplier <= 0 {
		return types.Money{}, Breakdown{}, configErr("multipliers", "no multiplier for %s", vehicle)
	}
	if s.MinPrice > s.MaxPrice {
		return types.Money{}, Breakdown{}, configErr("min_price", "%v exceeds max_price %v", s.MinPrice, s.MaxPrice)
	}
	if distanceKm < 0 {
		distanceKm = 0
	}

	b := Breakdown{DistanceKm: distanceKm, Multiplier: multiplier}
	if sameVillage {
		b.FlatFare = true
		b.Candidate = s.SameVillagePrice
		b.Multiplied = s.SameVillagePrice
		if s.MultiplyFlatFare {
			b.Multiplied = s.SameVillagePrice * multiplier
		} else {
			b.Multiplier = 1
		}
	} else {
		b.Candidate = s.BasePrice + distanceKm*s.PricePerKm
		b.Multiplied = b.Candidate * multiplier
	}

	price := types.FromMajor(b.Multiplied, currency)
	lo := types.FromMajor(s.MinPrice, currency)
	hi := types.FromMajor(s.MaxPrice, currency)
	if price.Amount < lo.Amount {
		price = lo
		b.ClampedToMin = true
	}
	if price.Amount > hi.Amount {
		price = hi
		b.ClampedToMax = true
	}
	return price, b, nil
}

// SplitRevenue takes commission and operator shares off the price and leaves the
// residual to the driver, so the three parts always sum to the price.
func SplitRevenue(price types.Money, commissionRate, operatorRate float64) (Split, error) {
	if commissionRate < 0 || commissionRate > 1 {
		return Split{}, configErr("platform_commission_rate", "must be within [0,1], got %v", commissionRate)
	}
	if operatorRate < 0 || operatorRate > 1 {
		return Split{}, configErr("operator_share_rate", "must be within [0,1], got %v", operatorRate)
	}
	if commissionRate+operatorRate > 1 {
		return Split{}, configErr("operator_share_rate", "commission %v + operator %v exceeds 1", commissionRate, operatorRate)
	}
	commission := types.Money{Amount: share(price.Amount, commissionRate), Currency: price.Currency}
	// rates summing to 1 can round the two cuts one unit past the price
	operator := types.Money{Amount: min(share(price.Amount, operatorRate), price.Amount-commission.Amount), Currency: price.Currency}
	return Split{
		Commission:  commission,
		OperatorCut: operator,
		DriverCut:   price.Sub(commission).Sub(operator),
	}, nil
}

func share(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}

// Engine prices trips with a hot-swappable platform config.
type Engine struct {
	cfg atomic.Pointer[Config]
}

func NewEngine(cfg Config) (*Engine, error) {
	e := &Engine{}
	if err := e.SetConfig(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// SetConfig replaces the platform config; invalid configs are rejected and the
// previous one stays active.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg.Store(&cfg)
	return nil
}

func (e *Engine) Config() Config {
	return *e.cfg.Load()
}

func (e *Engine) Quote(req QuoteRequest) (Quote, error) {
	cfg := e.Config()
	if req.Platform != nil {
		if err := req.Platform.Validate(); err != nil {
			return Quote{}, err
		}
		cfg = *req.Platform
	}
	price, breakdown, err := ComputePrice(req.DistanceKm, req.Schedule, req.Vehicle, req.SameVillage, cfg.Currency)
	if err != nil {
		return Quote{}, err
	}
	split, err := SplitRevenue(price, cfg.CommissionRate, req.OperatorShareRate)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Price: price, Breakdown: breakdown, Split: split}, nil
}
