// README: Order aggregate, status and action definitions.
package order

import (
	"time"

	"waslhaa/internal/types"
)

type Status string

const (
	StatusNone           Status = ""
	StatusPending        Status = "PENDING"
	StatusAccepted       Status = "ACCEPTED"
	StatusPickedUp       Status = "PICKED_UP"
	StatusDelivered      Status = "DELIVERED"
	StatusDeliveredRated Status = "DELIVERED_RATED"
	StatusCancelled      Status = "CANCELLED"
)

// Realized reports whether the order's revenue shares are payable.
func (s Status) Realized() bool {
	return s == StatusDelivered || s == StatusDeliveredRated
}

// Active reports whether the order still occupies its customer.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusPickedUp
}

// ActiveStatuses lists the statuses for which Active is true.
var ActiveStatuses = []Status{StatusPending, StatusAccepted, StatusPickedUp}

// RealizedStatuses lists the statuses for which Realized is true.
var RealizedStatuses = []Status{StatusDelivered, StatusDeliveredRated}

// Action is a lifecycle trigger applied to an order.
type Action string

const (
	ActionCreate  Action = "create"
	ActionAccept  Action = "accept"
	ActionPickUp  Action = "pickup"
	ActionDeliver Action = "deliver"
	ActionRate    Action = "rate"
	ActionCancel  Action = "cancel"
)

type Category string

const (
	CategoryTaxi     Category = "TAXI"
	CategoryDelivery Category = "DELIVERY"
)

func (c Category) Valid() bool {
	return c == CategoryTaxi || c == CategoryDelivery
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentWallet PaymentMethod = "WALLET"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentWallet
}

type Stop struct {
	Point   types.Point
	Address string
}

type Rating struct {
	Score   int
	Comment string
}

type Order struct {
	ID            types.ID
	CustomerID    types.ID
	CustomerPhone string
	DriverID      *types.ID
	OperatorID    string
	ZoneID        string
	Category      Category
	VehicleType   types.VehicleType
	Pickup        Stop
	Dropoff       Stop
	DistanceKm    float64
	SameVillage   bool
	Price         types.Money
	Commission    types.Money
	OperatorCut   types.Money
	DriverCut     types.Money
	PaymentMethod PaymentMethod
	Status        Status
	StatusVersion int
	Rating        *Rating
	CreatedAt     time.Time
	AcceptedAt    *time.Time
	PickedUpAt    *time.Time
	DeliveredAt   *time.Time
	CancelledAt   *time.Time
	RatedAt       *time.Time
	CancelledBy   types.Role
	CancelReason  string
}

// Event is one row of an order's audit trail.
type Event struct {
	ID        int64
	OrderID   types.ID
	From      Status
	To        Status
	Action    Action
	ActorRole types.Role
	ActorID   types.ID
	At        time.Time
}

// AllowedTransitions represents the order state flow as code.
var AllowedTransitions = map[Status]map[Action]Status{
	StatusPending: {
		ActionAccept: StatusAccepted,
		ActionCancel: StatusCancelled,
	},
	StatusAccepted: {
		ActionPickUp: StatusPickedUp,
		ActionCancel: StatusCancelled,
	},
	StatusPickedUp: {
		ActionDeliver: StatusDelivered,
	},
	StatusDelivered: {
		ActionRate: StatusDeliveredRated,
	},
}

// actionTargets is the status every action leads to, used to detect repeats.
var actionTargets = map[Action]Status{
	ActionAccept:  StatusAccepted,
	ActionPickUp:  StatusPickedUp,
	ActionDeliver: StatusDelivered,
	ActionRate:    StatusDeliveredRated,
	ActionCancel:  StatusCancelled,
}

func Next(from Status, a Action) (Status, bool) {
	to, ok := AllowedTransitions[from][a]
	return to, ok
}

func CanTransition(from Status, a Action) bool {
	_, ok := Next(from, a)
	return ok
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actionTargets[a]
	return a, ok
}
