package pricing

import (
	"errors"
	"testing"

	"waslhaa/internal/types"
)

func defaultSchedule() Schedule {
	return Schedule{
		BasePrice:        12,
		PricePerKm:       6,
		MinPrice:         20,
		MaxPrice:         400,
		SameVillagePrice: 20,
		Multipliers: map[types.VehicleType]float64{
			types.VehicleMotorcycle: 0.85,
			types.VehicleToktok:     1.0,
			types.VehicleCar:        1.3,
		},
	}
}

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name        string
		distanceKm  float64
		vehicle     types.VehicleType
		sameVillage bool
		mutate      func(*Schedule)
		want        int64
		wantMin     bool
		wantMax     bool
	}{
		{name: "toktok 2.5km", distanceKm: 2.5, vehicle: types.VehicleToktok, want: 2700},
		{name: "motorcycle discount", distanceKm: 2.5, vehicle: types.VehicleMotorcycle, want: 2295},
		{name: "short trip clamped to min", distanceKm: 0.1, vehicle: types.VehicleToktok, want: 2000, wantMin: true},
		{name: "long trip clamped to max", distanceKm: 100, vehicle: types.VehicleCar, want: 40000, wantMax: true},
		{name: "same village flat fare", distanceKm: 3.4, vehicle: types.VehicleCar, sameVillage: true, want: 2000},
		{
			name:        "same village flat fare multiplied",
			distanceKm:  3.4,
			vehicle:     types.VehicleCar,
			sameVillage: true,
			mutate:      func(s *Schedule) { s.SameVillagePrice = 30; s.MultiplyFlatFare = true },
			want:        3900,
		},
		{
			name:        "flat fare still clamped",
			vehicle:     types.VehicleToktok,
			sameVillage: true,
			mutate:      func(s *Schedule) { s.SameVillagePrice = 5 },
			want:        2000,
			wantMin:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSchedule()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			got, b, err := ComputePrice(tt.distanceKm, s, tt.vehicle, tt.sameVillage, "EGP")
			if err != nil {
				t.Fatalf("ComputePrice() error = %v", err)
			}
			if got.Amount != tt.want {
				t.Errorf("ComputePrice() = %d, want %d", got.Amount, tt.want)
			}
			if got.Currency != "EGP" {
				t.Errorf("currency = %q, want EGP", got.Currency)
			}
			if b.ClampedToMin != tt.wantMin || b.ClampedToMax != tt.wantMax {
				t.Errorf("clamp flags = (%v,%v), want (%v,%v)", b.ClampedToMin, b.ClampedToMax, tt.wantMin, tt.wantMax)
			}
			if b.FlatFare != tt.sameVillage {
				t.Errorf("FlatFare = %v, want %v", b.FlatFare, tt.sameVillage)
			}
		})
	}
}

func TestComputePriceWithinBounds(t *testing.T) {
	s := defaultSchedule()
	for _, v := range types.VehicleTypes {
		for d := 0.0; d <= 80; d += 0.7 {
			got, _, err := ComputePrice(d, s, v, false, "EGP")
			if err != nil {
				t.Fatalf("ComputePrice(%v, %s) error = %v", d, v, err)
			}
			if got.Amount < 2000 || got.Amount > 40000 {
				t.Fatalf("ComputePrice(%v, %s) = %d, out of [2000, 40000]", d, v, got.Amount)
			}
		}
	}
}

func TestComputePriceConfigurationErrors(t *testing.T) {
	s := defaultSchedule()
	delete(s.Multipliers, types.VehicleCar)

	tests := []struct {
		name     string
		schedule Schedule
		vehicle  types.VehicleType
	}{
		{name: "unknown vehicle", schedule: defaultSchedule(), vehicle: types.VehicleType("BUS")},
		{name: "missing multiplier", schedule: s, vehicle: types.VehicleCar},
		{name: "min above max", schedule: func() Schedule { s := defaultSchedule(); s.MinPrice = 500; return s }(), vehicle: types.VehicleCar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComputePrice(2, tt.schedule, tt.vehicle, false, "EGP")
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("ComputePrice() error = %v, want ErrConfiguration", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Field == "" {
				t.Fatalf("expected ConfigurationError with field, got %v", err)
			}
		})
	}
}

func TestScheduleValidate(t *testing.T) {
	if err := defaultSchedule().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	s := defaultSchedule()
	delete(s.Multipliers, types.VehicleMotorcycle)
	if err := s.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Validate() error = %v, want ErrConfiguration", err)
	}
	s = defaultSchedule()
	s.Multipliers[types.VehicleToktok] = 0
	if err := s.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Validate() zero multiplier error = %v, want ErrConfiguration", err)
	}
}

func TestSplitRevenue(t *testing.T) {
	tests := []struct {
		name                          string
		price                         int64
		commission, operator          float64
		wantCommission, wantOp, wantD int64
	}{
		{name: "default rates", price: 2700, commission: 0.15, operator: 0.15, wantCommission: 405, wantOp: 405, wantD: 1890},
		{name: "rounding residual to driver", price: 2295, commission: 0.15, operator: 0.15, wantCommission: 344, wantOp: 344, wantD: 1607},
		{name: "no operator", price: 2000, commission: 0.15, operator: 0, wantCommission: 300, wantOp: 0, wantD: 1700},
		{name: "rates sum to one", price: 2700, commission: 0.5, operator: 0.5, wantCommission: 1350, wantOp: 1350, wantD: 0},
		{name: "rates sum to one, odd unit", price: 1, commission: 0.5, operator: 0.5, wantCommission: 1, wantOp: 0, wantD: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := types.Money{Amount: tt.price, Currency: "EGP"}
			got, err := SplitRevenue(price, tt.commission, tt.operator)
			if err != nil {
				t.Fatalf("SplitRevenue() error = %v", err)
			}
			if got.Commission.Amount != tt.wantCommission || got.OperatorCut.Amount != tt.wantOp || got.DriverCut.Amount != tt.wantD {
				t.Errorf("SplitRevenue() = %d/%d/%d, want %d/%d/%d",
					got.Commission.Amount, got.OperatorCut.Amount, got.DriverCut.Amount,
					tt.wantCommission, tt.wantOp, tt.wantD)
			}
			if got.Total() != price {
				t.Errorf("Total() = %v, want %v", got.Total(), price)
			}
		})
	}
}

func TestSplitRevenueSumsToPrice(t *testing.T) {
	for amount := int64(0); amount <= 5000; amount += 37 {
		price := types.Money{Amount: amount, Currency: "EGP"}
		got, err := SplitRevenue(price, 0.15, 0.12)
		if err != nil {
			t.Fatalf("SplitRevenue() error = %v", err)
		}
		if got.Total().Amount != amount {
			t.Fatalf("split of %d sums to %d", amount, got.Total().Amount)
		}
		if got.DriverCut.Amount < 0 {
			t.Fatalf("negative driver cut for %d", amount)
		}
	}
}

func TestSplitRevenueFullShareNeverNegative(t *testing.T) {
	for _, rates := range [][2]float64{{0.5, 0.5}, {0.25, 0.75}, {0.75, 0.25}, {0.375, 0.625}} {
		for amount := int64(0); amount <= 501; amount++ {
			price := types.Money{Amount: amount, Currency: "EGP"}
			got, err := SplitRevenue(price, rates[0], rates[1])
			if err != nil {
				t.Fatalf("SplitRevenue(%d, %v) error = %v", amount, rates, err)
			}
			if got.DriverCut.Amount < 0 || got.OperatorCut.Amount < 0 {
				t.Fatalf("SplitRevenue(%d, %v) = %+v, negative cut", amount, rates, got)
			}
			if got.Total() != price {
				t.Fatalf("SplitRevenue(%d, %v) sums to %v", amount, rates, got.Total())
			}
		}
	}
}

func TestEngineQuoteUsesRequestPlatform(t *testing.T) {
	e, err := NewEngine(Config{CommissionRate: 0.15, Currency: "EGP"})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	req := QuoteRequest{
		DistanceKm:        2.5,
		Schedule:          defaultSchedule(),
		OperatorShareRate: 0.15,
		Vehicle:           types.VehicleToktok,
		Platform:          &Config{CommissionRate: 0.2, Currency: "EGP"},
	}
	q, err := e.Quote(req)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if q.Split.Commission.Amount != 540 || q.Split.DriverCut.Amount != 1755 {
		t.Fatalf("Quote() split = %+v, want commission 540 from the request config", q.Split)
	}

	req.Platform = &Config{CommissionRate: 1.5, Currency: "EGP"}
	if _, err := e.Quote(req); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Quote() error = %v, want ErrConfiguration", err)
	}
}

func TestSplitRevenueRejectsBadRates(t *testing.T) {
	price := types.Money{Amount: 1000, Currency: "EGP"}
	for _, rates := range [][2]float64{{-0.1, 0}, {0.2, 1.1}, {0.6, 0.5}} {
		if _, err := SplitRevenue(price, rates[0], rates[1]); !errors.Is(err, ErrConfiguration) {
			t.Errorf("SplitRevenue(%v) error = %v, want ErrConfiguration", rates, err)
		}
	}
}

func TestEngineQuote(t *testing.T) {
	e, err := NewEngine(Config{CommissionRate: 0.15, Currency: "EGP"})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	q, err := e.Quote(QuoteRequest{DistanceKm: 2.5, Schedule: defaultSchedule(), OperatorShareRate: 0.15, Vehicle: types.VehicleToktok})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if q.Price.Amount != 2700 || q.Split.DriverCut.Amount != 1890 {
		t.Fatalf("Quote() = %+v", q)
	}

	if err := e.SetConfig(Config{CommissionRate: 2, Currency: "EGP"}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("SetConfig() error = %v, want ErrConfiguration", err)
	}
	if e.Config().CommissionRate != 0.15 {
		t.Fatalf("invalid config replaced the active one")
	}
	if err := e.SetConfig(Config{CommissionRate: 0.1, Currency: "EGP"}); err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	q, err = e.Quote(QuoteRequest{DistanceKm: 2.5, Schedule: defaultSchedule(), OperatorShareRate: 0.15, Vehicle: types.VehicleToktok})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if q.Split.Commission.Amount != 270 {
		t.Fatalf("commission after reload = %d, want 270", q.Split.Commission.Amount)
	}
}
