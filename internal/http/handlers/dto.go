// README: JSON views of domain objects.
package handlers

import (
	"time"

	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/modules/zone"
	"waslhaa/internal/types"
)

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p pointDTO) point() types.Point { return types.Point{Lat: p.Lat, Lng: p.Lng} }

func toPointDTO(p types.Point) pointDTO { return pointDTO{Lat: p.Lat, Lng: p.Lng} }

type stopDTO struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

func (s stopDTO) stop() order.Stop {
	return order.Stop{Point: types.Point{Lat: s.Lat, Lng: s.Lng}, Address: s.Address}
}

func toStopDTO(s order.Stop) stopDTO {
	return stopDTO{Lat: s.Point.Lat, Lng: s.Point.Lng, Address: s.Address}
}

// moneyDTO carries both the exact minor-unit amount and a display value.
type moneyDTO struct {
	Minor    int64   `json:"minor"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func toMoneyDTO(m types.Money) moneyDTO {
	return moneyDTO{Minor: m.Amount, Amount: m.Major(), Currency: m.Currency}
}

type splitDTO struct {
	Commission  moneyDTO `json:"commission"`
	OperatorCut moneyDTO `json:"operator_cut"`
	DriverCut   moneyDTO `json:"driver_cut"`
}

type breakdownDTO struct {
	DistanceKm   float64 `json:"distance_km"`
	FlatFare     bool    `json:"flat_fare"`
	Candidate    float64 `json:"candidate"`
	Multiplier   float64 `json:"multiplier"`
	Multiplied   float64 `json:"multiplied"`
	ClampedToMin bool    `json:"clamped_to_min"`
	ClampedToMax bool    `json:"clamped_to_max"`
}

type quoteResponse struct {
	ZoneID      string       `json:"zone_id"`
	OperatorID  string       `json:"operator_id"`
	DistanceKm  float64      `json:"distance_km"`
	SameVillage bool         `json:"same_village"`
	Price       moneyDTO     `json:"price"`
	Split       splitDTO     `json:"split"`
	Breakdown   breakdownDTO `json:"breakdown"`
}

func toQuoteResponse(q order.QuoteResult) quoteResponse {
	b := q.Breakdown
	return quoteResponse{
		ZoneID:      q.ZoneID,
		OperatorID:  q.OperatorID,
		DistanceKm:  q.DistanceKm,
		SameVillage: q.SameVillage,
		Price:       toMoneyDTO(q.Price),
		Split: splitDTO{
			Commission:  toMoneyDTO(q.Split.Commission),
			OperatorCut: toMoneyDTO(q.Split.OperatorCut),
			DriverCut:   toMoneyDTO(q.Split.DriverCut),
		},
		Breakdown: breakdownDTO{
			DistanceKm:   b.DistanceKm,
			FlatFare:     b.FlatFare,
			Candidate:    b.Candidate,
			Multiplier:   b.Multiplier,
			Multiplied:   b.Multiplied,
			ClampedToMin: b.ClampedToMin,
			ClampedToMax: b.ClampedToMax,
		},
	}
}

type ratingDTO struct {
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

type orderResponse struct {
	ID            types.ID            `json:"id"`
	CustomerID    types.ID            `json:"customer_id"`
	CustomerPhone string              `json:"customer_phone,omitempty"`
	DriverID      *types.ID           `json:"driver_id,omitempty"`
	OperatorID    string              `json:"operator_id"`
	ZoneID        string              `json:"zone_id"`
	Category      order.Category      `json:"category"`
	VehicleType   types.VehicleType   `json:"vehicle_type"`
	Pickup        stopDTO             `json:"pickup"`
	Dropoff       stopDTO             `json:"dropoff"`
	DistanceKm    float64             `json:"distance_km"`
	SameVillage   bool                `json:"same_village"`
	Price         moneyDTO            `json:"price"`
	Split         splitDTO            `json:"split"`
	PaymentMethod order.PaymentMethod `json:"payment_method"`
	Status        order.Status        `json:"status"`
	StatusVersion int                 `json:"status_version"`
	Rating        *ratingDTO          `json:"rating,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	AcceptedAt    *time.Time          `json:"accepted_at,omitempty"`
	PickedUpAt    *time.Time          `json:"picked_up_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	RatedAt       *time.Time          `json:"rated_at,omitempty"`
	CancelledBy   types.Role          `json:"cancelled_by,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	out := orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		CustomerPhone: o.CustomerPhone,
		DriverID:      o.DriverID,
		OperatorID:    o.OperatorID,
		ZoneID:        o.ZoneID,
		Category:      o.Category,
		VehicleType:   o.VehicleType,
		Pickup:        toStopDTO(o.Pickup),
		Dropoff:       toStopDTO(o.Dropoff),
		DistanceKm:    o.DistanceKm,
		SameVillage:   o.SameVillage,
		Price:         toMoneyDTO(o.Price),
		Split: splitDTO{
			Commission:  toMoneyDTO(o.Commission),
			OperatorCut: toMoneyDTO(o.OperatorCut),
			DriverCut:   toMoneyDTO(o.DriverCut),
		},
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		StatusVersion: o.StatusVersion,
		CreatedAt:     o.CreatedAt,
		AcceptedAt:    o.AcceptedAt,
		PickedUpAt:    o.PickedUpAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		RatedAt:       o.RatedAt,
		CancelledBy:   o.CancelledBy,
		CancelReason:  o.CancelReason,
	}
	if o.Rating != nil {
		out.Rating = &ratingDTO{Score: o.Rating.Score, Comment: o.Rating.Comment}
	}
	return out
}

func toOrderList(orders []order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

type eventResponse struct {
	ID        int64        `json:"id"`
	From      order.Status `json:"from,omitempty"`
	To        order.Status `json:"to"`
	Action    order.Action `json:"action"`
	ActorRole types.Role   `json:"actor_role"`
	ActorID   types.ID     `json:"actor_id"`
	At        time.Time    `json:"at"`
}

func toEventList(events []order.Event) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			From:      e.From,
			To:        e.To,
			Action:    e.Action,
			ActorRole: e.ActorRole,
			ActorID:   e.ActorID,
			At:        e.At,
		})
	}
	return out
}

type driverEarningsDTO struct {
	DriverID types.ID `json:"driver_id"`
	Orders   int      `json:"orders"`
	Earned   moneyDTO `json:"earned"`
}

type revenueResponse struct {
	Orders      int                 `json:"orders"`
	Price       moneyDTO            `json:"price"`
	Commission  moneyDTO            `json:"commission"`
	OperatorCut moneyDTO            `json:"operator_cut"`
	DriverCut   moneyDTO            `json:"driver_cut"`
	Drivers     []driverEarningsDTO `json:"drivers"`
	ComputedAt  time.Time           `json:"computed_at"`
}

func toRevenueResponse(r order.Revenue) revenueResponse {
	out := revenueResponse{
		Orders:      r.Orders,
		Price:       toMoneyDTO(r.Price),
		Commission:  toMoneyDTO(r.Commission),
		OperatorCut: toMoneyDTO(r.OperatorCut),
		DriverCut:   toMoneyDTO(r.DriverCut),
		Drivers:     make([]driverEarningsDTO, 0, len(r.Drivers)),
		ComputedAt:  r.ComputedAt,
	}
	for _, d := range r.Drivers {
		out.Drivers = append(out.Drivers, driverEarningsDTO{DriverID: d.DriverID, Orders: d.Orders, Earned: toMoneyDTO(d.Earned)})
	}
	return out
}

type userResponse struct {
	ID          types.ID          `json:"id"`
	Role        types.Role        `json:"role"`
	Status      user.Status       `json:"status"`
	Name        string            `json:"name"`
	Phone       string            `json:"phone,omitempty"`
	VehicleType types.VehicleType `json:"vehicle_type,omitempty"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Role:        u.Role,
		Status:      u.Status,
		Name:        u.Name,
		Phone:       u.Phone,
		VehicleType: u.VehicleType,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type scheduleDTO struct {
	BasePrice        float64                       `json:"base_price"`
	PricePerKm       float64                       `json:"price_per_km"`
	MinPrice         float64                       `json:"min_price"`
	MaxPrice         float64                       `json:"max_price"`
	SameVillagePrice float64                       `json:"same_village_price"`
	MultiplyFlatFare bool                          `json:"multiply_flat_fare"`
	Multipliers      map[types.VehicleType]float64 `json:"multipliers"`
}

type zoneDTO struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	OperatorID        string      `json:"operator_id"`
	OperatorShareRate float64     `json:"operator_share_rate"`
	Center            pointDTO    `json:"center"`
	Pricing           scheduleDTO `json:"pricing"`
}

type villageDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Center   pointDTO `json:"center"`
	RadiusKm float64  `json:"radius_km"`
}

type catalogResponse struct {
	Currency       string       `json:"currency"`
	CommissionRate float64      `json:"platform_commission_rate"`
	DefaultZoneID  string       `json:"default_zone_id"`
	Zones          []zoneDTO    `json:"zones"`
	Villages       []villageDTO `json:"villages"`
}

func toCatalogResponse(c zone.Catalog) catalogResponse {
	out := catalogResponse{
		Currency:       c.Pricing.Currency,
		CommissionRate: c.Pricing.CommissionRate,
		DefaultZoneID:  c.DefaultZoneID,
		Zones:          make([]zoneDTO, 0, len(c.Zones)),
		Villages:       make([]villageDTO, 0, len(c.Villages)),
	}
	for _, z := range c.Zones {
		out.Zones = append(out.Zones, zoneDTO{
			ID:                z.ID,
			Name:              z.Name,
			OperatorID:        z.OperatorID,
			OperatorShareRate: z.OperatorShareRate,
			Center:            toPointDTO(z.Center),
			Pricing:           toScheduleDTO(z.Pricing),
		})
	}
	for _, v := range c.Villages {
		out.Villages = append(out.Villages, villageDTO{ID: v.ID, Name: v.Name, Center: toPointDTO(v.Center), RadiusKm: v.RadiusKm})
	}
	return out
}

func toScheduleDTO(s pricing.Schedule) scheduleDTO {
	return scheduleDTO{
		BasePrice:        s.BasePrice,
		PricePerKm:       s.PricePerKm,
		MinPrice:         s.MinPrice,
		MaxPrice:         s.MaxPrice,
		SameVillagePrice: s.SameVillagePrice,
		MultiplyFlatFare: s.MultiplyFlatFare,
		Multipliers:      s.Multipliers,
	}
}
