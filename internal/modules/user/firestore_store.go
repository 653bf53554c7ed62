// README: User repository backed by Cloud Firestore, shared with the dashboard apps.
package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"waslhaa/internal/types"
)

const usersCollection = "users"

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Create(ctx context.Context, u *User) error {
	_, err := s.client.Collection(usersCollection).Doc(string(u.ID)).Create(ctx, encodeUser(*u))
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id types.ID) (*User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(snap.Ref.ID, snap.Data())
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *FirestoreStore) UpdateStatus(ctx context.Context, id types.ID, st Status, at time.Time) error {
	_, err := s.client.Collection(usersCollection).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
		{Path: "updatedAt", Value: at},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

// List filters after decoding: dashboard documents store role and status
// lowercase or omit status entirely.
func (s *FirestoreStore) List(ctx context.Context, f Filter) ([]User, error) {
	snaps, err := s.client.Collection(usersCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	docs := make([]userDoc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, userDoc{id: snap.Ref.ID, data: snap.Data()})
	}
	return filterUsers(docs, f)
}

type userDoc struct {
	id   string
	data map[string]any
}

func filterUsers(docs []userDoc, f Filter) ([]User, error) {
	out := make([]User, 0, len(docs))
	for _, d := range docs {
		u, err := decodeUser(d.id, d.data)
		if err != nil {
			return nil, err
		}
		if f.Match(u) {
			out = append(out, u)
		}
	}
	sortUsers(out)
	return out, nil
}

func encodeUser(u User) map[string]any {
	doc := map[string]any{
		"role":      string(u.Role),
		"status":    string(u.Status),
		"name":      u.Name,
		"phone":     u.Phone,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
	if u.VehicleType != "" {
		doc["vehicleType"] = string(u.VehicleType)
	}
	if u.PhotoURL != "" {
		doc["photoURL"] = u.PhotoURL
	}
	return doc
}

// decodeUser maps a raw document onto User. Documents written by the web
// dashboards use lowercase enums and epoch-millis timestamps; both are accepted.
func decodeUser(id string, data map[string]any) (User, error) {
	u := User{
		ID:          types.ID(id),
		Role:        types.ParseRole(stringField(data, "role")),
		Name:        stringField(data, "name"),
		Phone:       stringField(data, "phone"),
		VehicleType: types.ParseVehicleType(stringField(data, "vehicleType")),
		PhotoURL:    stringField(data, "photoURL"),
	}
	if !u.Role.Valid() {
		return User{}, fmt.Errorf("user %s: unknown role %q", id, data["role"])
	}
	if u.VehicleType != "" && !u.VehicleType.Valid() {
		return User{}, fmt.Errorf("user %s: unknown vehicle type %q", id, data["vehicleType"])
	}

	st := Status(strings.ToUpper(stringField(data, "status")))
	switch {
	case st == "" && u.Role == types.RoleDriver:
		st = StatusPendingApproval
	case st == "":
		st = StatusApproved
	case !st.Valid():
		return User{}, fmt.Errorf("user %s: unknown status %q", id, data["status"])
	}
	u.Status = st

	var err error
	if u.CreatedAt, err = timeField(data, "createdAt"); err != nil {
		return User{}, fmt.Errorf("user %s: %w", id, err)
	}
	if u.UpdatedAt, err = timeField(data, "updatedAt"); err != nil {
		return User{}, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}

func timeField(data map[string]any, key string) (time.Time, error) {
	switch v := data[key].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v.UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("field %s has unsupported type %T", key, v)
	}
}
