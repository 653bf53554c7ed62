// README: Postgres store tests (run with -race); skipped without WASLHAA_TEST_DSN.
package order

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"waslhaa/internal/infra"
	"waslhaa/internal/types"
)

func TestStoreFlowAndHistory(t *testing.T) {
	svc := newTestService(t, setupTestStore(t))
	ctx := context.Background()
	o := mustCreateOrder(t, svc, "c_pg_flow")
	d := types.Actor{Role: types.RoleDriver, ID: "d1"}

	apply(t, svc, o.ID, ActionAccept, d)
	apply(t, svc, o.ID, ActionPickUp, d)
	apply(t, svc, o.ID, ActionDeliver, d)
	rated := apply(t, svc, o.ID, ActionRate, types.Actor{Role: types.RoleCustomer, ID: "c_pg_flow"})

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDeliveredRated || got.StatusVersion != rated.StatusVersion {
		t.Fatalf("stored order = %s/%d", got.Status, got.StatusVersion)
	}
	if got.Price != o.Price || got.DriverCut != o.DriverCut || got.Rating == nil || got.Rating.Score != 5 {
		t.Fatalf("stored order lost fields: %+v", got)
	}
	if got.DriverID == nil || *got.DriverID != "d1" || got.DeliveredAt == nil {
		t.Fatalf("driver/timestamps not persisted: %+v", got)
	}

	history, err := svc.History(ctx, o.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 5 || history[0].To != StatusPending || history[4].To != StatusDeliveredRated {
		t.Fatalf("unexpected history: %+v", history)
	}

	r, err := svc.Revenue(ctx, RevenueFilter{DriverID: "d1"})
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if r.Orders != 1 || r.Price.Amount != o.Price.Amount {
		t.Fatalf("unexpected revenue: %+v", r)
	}
}

func TestStoreOneActiveOrderPerCustomer(t *testing.T) {
	store := setupTestStore(t)
	svc := newTestService(t, store)
	ctx := context.Background()
	o := mustCreateOrder(t, svc, "c_pg_active")

	dup := *o
	dup.ID = newID()
	err := store.Create(ctx, &dup, &Event{OrderID: dup.ID, To: StatusPending, Action: ActionCreate, ActorRole: types.RoleCustomer, ActorID: dup.CustomerID, At: dup.CreatedAt})
	if !errors.Is(err, ErrActiveOrder) {
		t.Fatalf("got %v, want ErrActiveOrder", err)
	}
}

func TestConcurrentAcceptSameOrder(t *testing.T) {
	svc := newTestService(t, setupTestStore(t))
	o := mustCreateOrder(t, svc, "c_pg_multi_accept")
	runConcurrentAccept(t, svc, o.ID)
}

func TestConcurrentAcceptVsCancel(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestStore(t))
	o := mustCreateOrder(t, svc, "c_pg_accept_cancel")

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Apply(ctx, ApplyCommand{OrderID: o.ID, Action: ActionAccept, Actor: types.Actor{Role: types.RoleDriver, ID: "d1"}})
		errs <- err
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Apply(ctx, ApplyCommand{OrderID: o.ID, Action: ActionCancel, Actor: types.Actor{Role: types.RoleCustomer, ID: "c_pg_accept_cancel"}, Reason: "user_cancel"})
		errs <- err
	}()

	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success < 1 || success > 2 {
		t.Fatalf("expected 1 or 2 successes, got %d", success)
	}

	got, err := svc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if success == 2 && got.Status != StatusCancelled {
		t.Fatalf("expected cancelled after accept+cancel, got %s", got.Status)
	}
	if success == 1 && got.Status != StatusAccepted && got.Status != StatusCancelled {
		t.Fatalf("unexpected final status: %s", got.Status)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("WASLHAA_TEST_DSN")
	if dsn == "" {
		t.Skip("WASLHAA_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE order_state_events, orders"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	_, err = infra.Migrate(ctx, db, filepath.Join(root, "migrations"))
	return err
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}
