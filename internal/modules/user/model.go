// README: User account model, statuses and errors.
package user

import (
	"errors"
	"time"

	"waslhaa/internal/types"
)

type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusSuspended       Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	return s == StatusPendingApproval || s == StatusApproved || s == StatusSuspended
}

var (
	ErrNotFound        = errors.New("user not found")
	ErrAlreadyExists   = errors.New("user already exists")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrNotApproved     = errors.New("driver is not approved")
	ErrVehicleMismatch = errors.New("driver vehicle does not match order")
)

type User struct {
	ID          types.ID
	Role        types.Role
	Status      Status
	Name        string
	Phone       string
	VehicleType types.VehicleType // drivers only
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter narrows List; empty fields match everything.
type Filter struct {
	Role   types.Role
	Status Status
}

func (f Filter) Match(u User) bool {
	return (f.Role == "" || u.Role == f.Role) && (f.Status == "" || u.Status == f.Status)
}
