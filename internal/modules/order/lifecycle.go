// README: Pure order lifecycle: validates and applies one action to an order.
package order

import (
	"errors"
	"fmt"
	"time"

	"waslhaa/internal/types"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNotFound          = errors.New("order not found")
	ErrConflict          = errors.New("order state conflict")
	ErrActiveOrder       = errors.New("customer has active order")
	ErrBadRequest        = errors.New("bad request")
)

// InvalidTransitionError is returned when an action is not allowed for the
// order's current status or for the acting user.
type InvalidTransitionError struct {
	From   Status
	Action Action
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s from %s: %s", e.Action, e.From, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// Input describes one lifecycle action.
type Input struct {
	Action Action
	Actor  types.Actor
	Rating *Rating
	Reason string
}

// Transition applies in to o at now. It returns the new order and whether
// anything changed; repeating an action the order already reflects is a no-op.
// The input order is never modified.
func Transition(o Order, in Input, now time.Time) (Order, bool, error) {
	target, known := actionTargets[in.Action]
	if !known {
		return o, false, &InvalidTransitionError{From: o.Status, Action: in.Action, Reason: "unknown action"}
	}

	if o.Status == target {
		if err := authorize(o, in); err != nil {
			return o, false, err
		}
		return o, false, nil
	}

	next, ok := Next(o.Status, in.Action)
	if !ok {
		return o, false, &InvalidTransitionError{
			From:   o.Status,
			Action: in.Action,
			Reason: fmt.Sprintf("not allowed from %s", o.Status),
		}
	}
	if err := authorize(o, in); err != nil {
		return o, false, err
	}

	at := now.UTC()
	out := o
	out.Status = next
	out.StatusVersion = o.StatusVersion + 1
	switch in.Action {
	case ActionAccept:
		driverID := in.Actor.ID
		out.DriverID = &driverID
		out.AcceptedAt = &at
	case ActionPickUp:
		out.PickedUpAt = &at
	case ActionDeliver:
		out.DeliveredAt = &at
	case ActionRate:
		r := *in.Rating
		out.Rating = &r
		out.RatedAt = &at
	case ActionCancel:
		out.CancelledAt = &at
		out.CancelledBy = in.Actor.Role
		out.CancelReason = in.Reason
	}
	return out, true, nil
}

// authorize checks that the actor may perform the action on this order.
func authorize(o Order, in Input) error {
	deny := func(reason string) error {
		return &InvalidTransitionError{From: o.Status, Action: in.Action, Reason: reason}
	}
	actor := in.Actor
	if actor.ID == "" {
		return deny("actor is required")
	}
	boundDriver := o.DriverID != nil && *o.DriverID == actor.ID

	switch in.Action {
	case ActionAccept:
		if actor.Role != types.RoleDriver {
			return deny("only drivers can accept orders")
		}
		if o.DriverID != nil && !boundDriver {
			return deny("order is assigned to another driver")
		}
	case ActionPickUp, ActionDeliver:
		if actor.Role != types.RoleDriver || !boundDriver {
			return deny("only the assigned driver can update this order")
		}
	case ActionRate:
		if actor.Role != types.RoleCustomer || actor.ID != o.CustomerID {
			return deny("only the ordering customer can rate")
		}
		if o.Status != StatusDeliveredRated {
			if in.Rating == nil || in.Rating.Score < 1 || in.Rating.Score > 5 {
				return fmt.Errorf("%w: rating score must be between 1 and 5", ErrBadRequest)
			}
		}
	case ActionCancel:
		switch actor.Role {
		case types.RoleAdmin:
		case types.RoleCustomer:
			if actor.ID != o.CustomerID {
				return deny("only the ordering customer can cancel")
			}
		case types.RoleDriver:
			if !boundDriver {
				return deny("only the assigned driver can cancel")
			}
		default:
			return deny("unknown actor role")
		}
	}
	return nil
}
