// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"waslhaa/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
	id, customer_id, customer_phone, driver_id, operator_id, zone_id,
	category, vehicle_type,
	pickup_lat, pickup_lng, pickup_address,
	dropoff_lat, dropoff_lng, dropoff_address,
	distance_km, same_village,
	currency, price, commission, operator_cut, driver_cut,
	payment_method, status, status_version,
	rating_score, rating_comment,
	created_at, accepted_at, picked_up_at, delivered_at, cancelled_at, rated_at,
	cancelled_by, cancel_reason`

func (s *Store) Create(ctx context.Context, o *Order, e *Event) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16,
			$17, $18, $19, $20, $21,
			$22, $23, $24,
			$25, $26,
			$27, $28, $29, $30, $31, $32,
			$33, $34
		)`, orderArgs(o)...,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "orders_one_active_per_customer" {
		return ErrActiveOrder
	}
	if err != nil {
		return err
	}
	if err := appendEvent(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) Update(ctx context.Context, o *Order, fromStatus Status, fromVersion int, e *Event) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	score, comment := ratingArgs(o.Rating)
	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
			status_version = $2,
			driver_id = $3,
			rating_score = $4,
			rating_comment = $5,
			accepted_at = $6,
			picked_up_at = $7,
			delivered_at = $8,
			cancelled_at = $9,
			rated_at = $10,
			cancelled_by = $11,
			cancel_reason = $12
		WHERE id = $13 AND status = $14 AND status_version = $15`,
		string(o.Status),
		o.StatusVersion,
		idPtr(o.DriverID),
		score, comment,
		o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt, o.RatedAt,
		nullIfEmpty(string(o.CancelledBy)),
		nullIfEmpty(o.CancelReason),
		string(o.ID),
		string(fromStatus),
		fromVersion,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	if err := appendEvent(ctx, tx, e); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) HasActiveByCustomer(ctx context.Context, customerID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE customer_id = $1
			  AND status = ANY($2)
		)`, string(customerID), statusStrings(ActiveStatuses),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) ListByCustomer(ctx context.Context, customerID types.ID, limit int) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, string(customerID), limit,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) ListPending(ctx context.Context, vehicle types.VehicleType, limit int) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		  AND ($2 = '' OR vehicle_type = $2)
		ORDER BY created_at ASC, id ASC
		LIMIT $3`, string(StatusPending), string(vehicle), limit,
	)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) ListRealized(ctx context.Context, f RevenueFilter) ([]Order, error) {
	where := []string{"status = ANY($1)"}
	args := []any{statusStrings(RealizedStatuses)}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.From != nil {
		add("delivered_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("delivered_at < $%d", *f.To)
	}
	if f.ZoneID != "" {
		add("zone_id = $%d", f.ZoneID)
	}
	if f.DriverID != "" {
		add("driver_id = $%d", string(f.DriverID))
	}
	rows, err := s.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (s *Store) History(ctx context.Context, id types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, from_status, to_status, action, actor_role, actor_id, created_at
		FROM order_state_events
		WHERE order_id = $1
		ORDER BY id ASC`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e                         Event
			orderID, from, to, action string
			actorRole, actorID        string
		)
		if err := rows.Scan(&e.ID, &orderID, &from, &to, &action, &actorRole, &actorID, &e.At); err != nil {
			return nil, err
		}
		e.OrderID = types.ID(orderID)
		e.From = Status(from)
		e.To = Status(to)
		e.Action = Action(action)
		e.ActorRole = types.Role(actorRole)
		e.ActorID = types.ID(actorID)
		out = append(out, e)
	}
	return out, rows.Err()
}

func appendEvent(ctx context.Context, tx pgx.Tx, e *Event) error {
	return tx.QueryRow(ctx, `
		INSERT INTO order_state_events (
			order_id, from_status, to_status, action, actor_role, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		string(e.OrderID),
		string(e.From),
		string(e.To),
		string(e.Action),
		string(e.ActorRole),
		string(e.ActorID),
		e.At,
	).Scan(&e.ID)
}

func orderArgs(o *Order) []any {
	score, comment := ratingArgs(o.Rating)
	return []any{
		string(o.ID), string(o.CustomerID), o.CustomerPhone, idPtr(o.DriverID), o.OperatorID, o.ZoneID,
		string(o.Category), string(o.VehicleType),
		o.Pickup.Point.Lat, o.Pickup.Point.Lng, o.Pickup.Address,
		o.Dropoff.Point.Lat, o.Dropoff.Point.Lng, o.Dropoff.Address,
		o.DistanceKm, o.SameVillage,
		o.Price.Currency, o.Price.Amount, o.Commission.Amount, o.OperatorCut.Amount, o.DriverCut.Amount,
		string(o.PaymentMethod), string(o.Status), o.StatusVersion,
		score, comment,
		o.CreatedAt, o.AcceptedAt, o.PickedUpAt, o.DeliveredAt, o.CancelledAt, o.RatedAt,
		nullIfEmpty(string(o.CancelledBy)), nullIfEmpty(o.CancelReason),
	}
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                                   Order
		id, customerID                      string
		category, vehicle, payment, status  string
		currency                            string
		driverID, cancelledBy, cancelReason *string
		ratingScore                         *int16
		ratingComment                       *string
		acceptedAt, pickedUpAt, deliveredAt *time.Time
		cancelledAt, ratedAt                *time.Time
	)
	err := row.Scan(
		&id, &customerID, &o.CustomerPhone, &driverID, &o.OperatorID, &o.ZoneID,
		&category, &vehicle,
		&o.Pickup.Point.Lat, &o.Pickup.Point.Lng, &o.Pickup.Address,
		&o.Dropoff.Point.Lat, &o.Dropoff.Point.Lng, &o.Dropoff.Address,
		&o.DistanceKm, &o.SameVillage,
		&currency, &o.Price.Amount, &o.Commission.Amount, &o.OperatorCut.Amount, &o.DriverCut.Amount,
		&payment, &status, &o.StatusVersion,
		&ratingScore, &ratingComment,
		&o.CreatedAt, &acceptedAt, &pickedUpAt, &deliveredAt, &cancelledAt, &ratedAt,
		&cancelledBy, &cancelReason,
	)
	if err != nil {
		return Order{}, err
	}

	o.ID = types.ID(id)
	o.CustomerID = types.ID(customerID)
	o.Category = Category(category)
	o.VehicleType = types.VehicleType(vehicle)
	o.PaymentMethod = PaymentMethod(payment)
	o.Status = Status(status)
	o.Price.Currency = currency
	o.Commission.Currency = currency
	o.OperatorCut.Currency = currency
	o.DriverCut.Currency = currency
	if driverID != nil {
		d := types.ID(*driverID)
		o.DriverID = &d
	}
	if ratingScore != nil {
		o.Rating = &Rating{Score: int(*ratingScore)}
		if ratingComment != nil {
			o.Rating.Comment = *ratingComment
		}
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.AcceptedAt = utcPtr(acceptedAt)
	o.PickedUpAt = utcPtr(pickedUpAt)
	o.DeliveredAt = utcPtr(deliveredAt)
	o.CancelledAt = utcPtr(cancelledAt)
	o.RatedAt = utcPtr(ratedAt)
	if cancelledBy != nil {
		o.CancelledBy = types.Role(*cancelledBy)
	}
	if cancelReason != nil {
		o.CancelReason = *cancelReason
	}
	return o, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func ratingArgs(r *Rating) (*int16, *string) {
	if r == nil {
		return nil, nil
	}
	score := int16(r.Score)
	comment := r.Comment
	return &score, &comment
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
