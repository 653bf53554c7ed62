package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"waslhaa/internal/types"
)

var admin = types.Actor{Role: types.RoleAdmin, ID: "a1"}

func newTestService() *Service {
	return NewService(NewMemoryStore(), nil)
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	c, err := svc.Register(ctx, RegisterCommand{ID: "c1", Role: types.RoleCustomer, Name: "Mona", VehicleType: types.VehicleCar})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	if c.Status != StatusApproved || c.VehicleType != "" {
		t.Fatalf("customer = %+v", c)
	}

	d, err := svc.Register(ctx, RegisterCommand{ID: "d1", Role: types.RoleDriver, Name: "Ali", VehicleType: types.VehicleToktok})
	if err != nil {
		t.Fatalf("register driver: %v", err)
	}
	if d.Status != StatusPendingApproval || d.VehicleType != types.VehicleToktok {
		t.Fatalf("driver = %+v", d)
	}

	cases := []struct {
		name string
		cmd  RegisterCommand
		want error
	}{
		{"duplicate", RegisterCommand{ID: "c1", Role: types.RoleCustomer, Name: "Again"}, ErrAlreadyExists},
		{"admin self signup", RegisterCommand{ID: "x", Role: types.RoleAdmin, Name: "Root"}, ErrForbidden},
		{"driver without vehicle", RegisterCommand{ID: "d2", Role: types.RoleDriver, Name: "Sami"}, ErrBadRequest},
		{"missing name", RegisterCommand{ID: "c2", Role: types.RoleCustomer}, ErrBadRequest},
		{"missing id", RegisterCommand{Role: types.RoleCustomer, Name: "Nour"}, ErrBadRequest},
		{"unknown role", RegisterCommand{ID: "c3", Role: "OPERATOR", Name: "Op"}, ErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.cmd); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSetUserStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterCommand{ID: "d1", Role: types.RoleDriver, Name: "Ali", VehicleType: types.VehicleCar}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.SetUserStatus(ctx, types.Actor{Role: types.RoleDriver, ID: "d1"}, "d1", StatusApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin: got %v, want ErrForbidden", err)
	}
	if _, err := svc.SetUserStatus(ctx, admin, "ghost", StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := svc.SetUserStatus(ctx, admin, "d1", "BANNED"); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("bad status: got %v, want ErrBadRequest", err)
	}

	for _, st := range []Status{StatusApproved, StatusSuspended, StatusApproved} {
		u, err := svc.SetUserStatus(ctx, admin, "d1", st)
		if err != nil {
			t.Fatalf("set %s: %v", st, err)
		}
		if u.Status != st {
			t.Fatalf("returned status %s, want %s", u.Status, st)
		}
		stored, _ := svc.Get(ctx, "d1")
		if stored.Status != st {
			t.Fatalf("stored status %s, want %s", stored.Status, st)
		}
	}
}

func TestEnsureDriverEligible(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	mustRegister := func(cmd RegisterCommand) {
		t.Helper()
		if _, err := svc.Register(ctx, cmd); err != nil {
			t.Fatalf("register %s: %v", cmd.ID, err)
		}
	}
	mustRegister(RegisterCommand{ID: "d1", Role: types.RoleDriver, Name: "Ali", VehicleType: types.VehicleToktok})
	mustRegister(RegisterCommand{ID: "d2", Role: types.RoleDriver, Name: "Omar", VehicleType: types.VehicleCar})
	mustRegister(RegisterCommand{ID: "c1", Role: types.RoleCustomer, Name: "Mona"})
	if _, err := svc.SetUserStatus(ctx, admin, "d1", StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cases := []struct {
		name    string
		id      types.ID
		vehicle types.VehicleType
		want    error
	}{
		{"approved match", "d1", types.VehicleToktok, nil},
		{"vehicle mismatch", "d1", types.VehicleCar, ErrVehicleMismatch},
		{"pending driver", "d2", types.VehicleCar, ErrNotApproved},
		{"customer", "c1", types.VehicleCar, ErrNotApproved},
		{"unknown", "zz", types.VehicleCar, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.EnsureDriverEligible(ctx, tc.id, tc.vehicle)
			if tc.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := svc.SetUserStatus(ctx, admin, "d1", StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if err := svc.EnsureDriverEligible(ctx, "d1", types.VehicleToktok); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("suspended driver: got %v", err)
	}
}

func TestList(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }
	ctx := context.Background()

	for _, cmd := range []RegisterCommand{
		{ID: "d1", Role: types.RoleDriver, Name: "Ali", VehicleType: types.VehicleCar},
		{ID: "c1", Role: types.RoleCustomer, Name: "Mona"},
		{ID: "d2", Role: types.RoleDriver, Name: "Omar", VehicleType: types.VehicleCar},
	} {
		if _, err := svc.Register(ctx, cmd); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	pending, err := svc.List(ctx, Filter{Role: types.RoleDriver, Status: StatusPendingApproval})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "d2" || pending[1].ID != "d1" {
		t.Fatalf("pending drivers = %+v", pending)
	}
	all, _ := svc.List(ctx, Filter{})
	if len(all) != 3 {
		t.Fatalf("all users = %d", len(all))
	}
}
