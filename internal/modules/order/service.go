// README: Order service prices trips, applies lifecycle actions and persists them.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"waslhaa/internal/geo"
	"waslhaa/internal/logging"
	"waslhaa/internal/modules/pricing"
	"waslhaa/internal/modules/zone"
	"waslhaa/internal/observability"
	"waslhaa/internal/types"
)

// Repository persists orders and their audit trail.
type Repository interface {
	// Create stores a new order with its creation event. It returns
	// ErrActiveOrder if the customer already has an active order.
	Create(ctx context.Context, o *Order, e *Event) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	// Update stores o only if the persisted order still has fromStatus and
	// fromVersion, appending e in the same unit of work. It reports whether
	// the row was updated.
	Update(ctx context.Context, o *Order, fromStatus Status, fromVersion int, e *Event) (bool, error)
	HasActiveByCustomer(ctx context.Context, customerID types.ID) (bool, error)
	ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error)
	ListPending(ctx context.Context, vehicle types.VehicleType, limit int) ([]Order, error)
	ListRealized(ctx context.Context, f RevenueFilter) ([]Order, error)
	History(ctx context.Context, id types.ID) ([]Event, error)
}

type Pricer interface {
	Quote(req pricing.QuoteRequest) (pricing.Quote, error)
	Config() pricing.Config
}

type VillageMatcher interface {
	SameVillage(a, b types.Point) bool
}

type DriverEligibility interface {
	EnsureDriverEligible(ctx context.Context, driverID types.ID, vehicle types.VehicleType) error
}

type AddressResolver interface {
	ReverseGeocode(ctx context.Context, p types.Point) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e Event, o Order) error
}

type RevenueCache interface {
	Get(ctx context.Context, key string) (Revenue, bool, error)
	Set(ctx context.Context, key string, r Revenue) error
}

type Service struct {
	store     Repository
	pricer    Pricer
	zones     zone.Resolver
	villages  VillageMatcher
	drivers   DriverEligibility
	addresses AddressResolver
	publisher EventPublisher
	revenue   RevenueCache
	log       *slog.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithDriverEligibility(d DriverEligibility) Option { return func(s *Service) { s.drivers = d } }
func WithAddressResolver(a AddressResolver) Option    { return func(s *Service) { s.addresses = a } }
func WithPublisher(p EventPublisher) Option           { return func(s *Service) { s.publisher = p } }
func WithRevenueCache(c RevenueCache) Option          { return func(s *Service) { s.revenue = c } }
func WithLogger(l *slog.Logger) Option                { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option           { return func(s *Service) { s.now = now } }

func NewService(store Repository, pricer Pricer, zones zone.Resolver, villages VillageMatcher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pricer:   pricer,
		zones:    zones,
		villages: villages,
		log:      logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type TripRequest struct {
	Pickup      types.Point
	Dropoff     types.Point
	VehicleType types.VehicleType
}

type QuoteResult struct {
	ZoneID      string
	OperatorID  string
	DistanceKm  float64
	SameVillage bool
	pricing.Quote
}

type CreateCommand struct {
	CustomerID    types.ID
	CustomerPhone string
	Category      Category
	VehicleType   types.VehicleType
	Pickup        Stop
	Dropoff       Stop
	PaymentMethod PaymentMethod
}

type ApplyCommand struct {
	OrderID         types.ID
	Action          Action
	Actor           types.Actor
	ExpectedVersion *int
	Rating          *Rating
	Reason          string
}

// Quote prices a trip without persisting anything.
func (s *Service) Quote(ctx context.Context, req TripRequest) (QuoteResult, error) {
	if err := req.Pickup.Validate(); err != nil {
		return QuoteResult{}, fmt.Errorf("%w: pickup: %v", ErrBadRequest, err)
	}
	if err := req.Dropoff.Validate(); err != nil {
		return QuoteResult{}, fmt.Errorf("%w: dropoff: %v", ErrBadRequest, err)
	}
	z, err := s.zones.FindZoneForPoint(req.Pickup)
	if err != nil {
		return QuoteResult{}, err
	}
	res := QuoteResult{
		ZoneID:      z.ID,
		OperatorID:  z.OperatorID,
		DistanceKm:  geo.DistanceKm(req.Pickup, req.Dropoff),
		SameVillage: s.villages.SameVillage(req.Pickup, req.Dropoff),
	}
	q, err := s.pricer.Quote(pricing.QuoteRequest{
		DistanceKm:        res.DistanceKm,
		Schedule:          z.Pricing,
		OperatorShareRate: z.OperatorShareRate,
		Vehicle:           req.VehicleType,
		SameVillage:       res.SameVillage,
		Platform:          platformOf(z),
	})
	if err != nil {
		return QuoteResult{}, err
	}
	res.Quote = q
	observability.QuotesTotal.WithLabelValues(string(req.VehicleType), strconv.FormatBool(res.SameVillage)).Inc()
	observability.QuotedPrice.Observe(q.Price.Major())
	return res, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrBadRequest)
	}
	if cmd.Category == "" {
		cmd.Category = CategoryTaxi
	}
	if !cmd.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrBadRequest, cmd.Category)
	}
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = PaymentCash
	}
	if !cmd.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrBadRequest, cmd.PaymentMethod)
	}

	active, err := s.store.HasActiveByCustomer(ctx, cmd.CustomerID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrActiveOrder
	}

	q, err := s.Quote(ctx, TripRequest{Pickup: cmd.Pickup.Point, Dropoff: cmd.Dropoff.Point, VehicleType: cmd.VehicleType})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:            newID(),
		CustomerID:    cmd.CustomerID,
		CustomerPhone: cmd.CustomerPhone,
		OperatorID:    q.OperatorID,
		ZoneID:        q.ZoneID,
		Category:      cmd.Category,
		VehicleType:   cmd.VehicleType,
		Pickup:        s.resolveAddress(ctx, cmd.Pickup),
		Dropoff:       s.resolveAddress(ctx, cmd.Dropoff),
		DistanceKm:    q.DistanceKm,
		SameVillage:   q.SameVillage,
		Price:         q.Price,
		Commission:    q.Split.Commission,
		OperatorCut:   q.Split.OperatorCut,
		DriverCut:     q.Split.DriverCut,
		PaymentMethod: cmd.PaymentMethod,
		Status:        StatusPending,
		StatusVersion: 0,
		CreatedAt:     now,
	}
	e := &Event{
		OrderID:   o.ID,
		From:      StatusNone,
		To:        StatusPending,
		Action:    ActionCreate,
		ActorRole: types.RoleCustomer,
		ActorID:   cmd.CustomerID,
		At:        now,
	}
	if err := s.store.Create(ctx, o, e); err != nil {
		return nil, err
	}
	observability.OrdersCreatedTotal.WithLabelValues(o.ZoneID, string(o.VehicleType)).Inc()
	s.publish(ctx, *e, *o)
	return o, nil
}

// Apply runs one lifecycle action against the stored order.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (*Order, error) {
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	// one instant for both the order timestamps and the audit event
	now := s.now().UTC()
	next, changed, err := Transition(*o, Input{
		Action: cmd.Action,
		Actor:  cmd.Actor,
		Rating: cmd.Rating,
		Reason: cmd.Reason,
	}, now)
	if err != nil {
		observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "rejected").Inc()
		return nil, err
	}
	if !changed {
		observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "noop").Inc()
		return o, nil
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != o.StatusVersion {
		observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "conflict").Inc()
		return nil, fmt.Errorf("%w: expected version %d, current %d", ErrConflict, *cmd.ExpectedVersion, o.StatusVersion)
	}
	if cmd.Action == ActionAccept && s.drivers != nil {
		if err := s.drivers.EnsureDriverEligible(ctx, cmd.Actor.ID, o.VehicleType); err != nil {
			observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "rejected").Inc()
			return nil, err
		}
	}

	e := &Event{
		OrderID:   o.ID,
		From:      o.Status,
		To:        next.Status,
		Action:    cmd.Action,
		ActorRole: cmd.Actor.Role,
		ActorID:   cmd.Actor.ID,
		At:        now,
	}
	ok, err := s.store.Update(ctx, &next, o.Status, o.StatusVersion, e)
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "conflict").Inc()
		return nil, ErrConflict
	}
	observability.OrderTransitionsTotal.WithLabelValues(string(cmd.Action), "applied").Inc()
	s.publish(ctx, *e, next)
	return &next, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) History(ctx context.Context, id types.ID) ([]Event, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error) {
	return s.store.ListByCustomer(ctx, customerID, clampLimit(limit))
}

// ListAvailable returns pending orders, oldest first. An empty vehicle lists all.
func (s *Service) ListAvailable(ctx context.Context, vehicle types.VehicleType, limit int) ([]Order, error) {
	return s.store.ListPending(ctx, vehicle, clampLimit(limit))
}

// Revenue aggregates realized orders. With a cache configured the result may
// lag recent deliveries by up to the cache TTL.
func (s *Service) Revenue(ctx context.Context, f RevenueFilter) (Revenue, error) {
	key := f.Key()
	if s.revenue != nil {
		r, ok, err := s.revenue.Get(ctx, key)
		if err != nil {
			s.log.Warn("revenue cache read failed", "key", key, "error", err)
		} else if ok {
			return r, nil
		}
	}
	orders, err := s.store.ListRealized(ctx, f)
	if err != nil {
		return Revenue{}, err
	}
	r := Summarize(orders, s.pricer.Config().Currency, s.now())
	if s.revenue != nil {
		if err := s.revenue.Set(ctx, key, r); err != nil {
			s.log.Warn("revenue cache write failed", "key", key, "error", err)
		}
	}
	return r, nil
}

func (s *Service) resolveAddress(ctx context.Context, st Stop) Stop {
	if st.Address != "" || s.addresses == nil {
		return st
	}
	addr, err := s.addresses.ReverseGeocode(ctx, st.Point)
	if err != nil {
		s.log.Warn("reverse geocode failed", "lat", st.Point.Lat, "lng", st.Point.Lng, "error", err)
		return st
	}
	st.Address = addr
	return st
}

// platformOf returns the config stamped on z by its registry, if any.
func platformOf(z zone.Zone) *pricing.Config {
	if z.Platform == (pricing.Config{}) {
		return nil
	}
	p := z.Platform
	return &p
}

func (s *Service) publish(ctx context.Context, e Event, o Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e, o); err != nil {
		observability.EventPublishFailuresTotal.Inc()
		s.log.Error("publish order event", "order_id", o.ID, "action", e.Action, "error", err)
	}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func clampLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// newID returns a time-ordered identifier.
func newID() types.ID {
	id, err := uuid.NewV7()
	if err != nil {
		return types.ID(uuid.NewString())
	}
	return types.ID(id.String())
}
