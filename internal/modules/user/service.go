// README: User registry service: signup, admin status changes, driver eligibility.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"waslhaa/internal/logging"
	"waslhaa/internal/types"
)

type Repository interface {
	// Create fails with ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	UpdateStatus(ctx context.Context, id types.ID, status Status, at time.Time) error
	List(ctx context.Context, f Filter) ([]User, error)
}

type Service struct {
	store Repository
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store Repository, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{store: store, log: log, now: time.Now}
}

type RegisterCommand struct {
	ID          types.ID
	Role        types.Role
	Name        string
	Phone       string
	VehicleType types.VehicleType
	PhotoURL    string
}

// Register creates an account. Customers are approved immediately; drivers
// wait for an admin. Admin accounts cannot be self-registered.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if cmd.ID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrBadRequest)
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrBadRequest)
	}
	now := s.now().UTC()
	u := &User{
		ID:        cmd.ID,
		Role:      cmd.Role,
		Name:      strings.TrimSpace(cmd.Name),
		Phone:     strings.TrimSpace(cmd.Phone),
		PhotoURL:  cmd.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch cmd.Role {
	case types.RoleCustomer:
		u.Status = StatusApproved
	case types.RoleDriver:
		if !cmd.VehicleType.Valid() {
			return nil, fmt.Errorf("%w: drivers need a vehicle type, got %q", ErrBadRequest, cmd.VehicleType)
		}
		u.VehicleType = cmd.VehicleType
		u.Status = StatusPendingApproval
	case types.RoleAdmin:
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, cmd.Role)
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID, "role", u.Role, "status", u.Status)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]User, error) {
	return s.store.List(ctx, f)
}

// SetUserStatus approves, suspends or reinstates an account. Admin only.
func (s *Service) SetUserStatus(ctx context.Context, actor types.Actor, id types.ID, status Status) (*User, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadRequest, status)
	}
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status == status {
		return u, nil
	}
	at := s.now().UTC()
	if err := s.store.UpdateStatus(ctx, id, status, at); err != nil {
		return nil, err
	}
	s.log.Info("user status changed", "user_id", id, "from", u.Status, "to", status, "admin_id", actor.ID)
	u.Status = status
	u.UpdatedAt = at
	return u, nil
}

// EnsureDriverEligible checks that id is an approved driver able to serve vehicle.
func (s *Service) EnsureDriverEligible(ctx context.Context, id types.ID, vehicle types.VehicleType) error {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != types.RoleDriver || u.Status != StatusApproved {
		return ErrNotApproved
	}
	if u.VehicleType != "" && u.VehicleType != vehicle {
		return fmt.Errorf("%w: driver has %s, order needs %s", ErrVehicleMismatch, u.VehicleType, vehicle)
	}
	return nil
}
