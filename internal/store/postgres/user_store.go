package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure UserStore implements store.UserStore interface.
var _ store.UserStore = (*UserStore)(nil)

const userColumns = `
	id::text, name, email, avatar, phone_number,
	preferences, payment_methods, last_active, created_at, updated_at`

type UserStore struct {
	db DBTX
}

func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row pgx.Row) (*types.User, error) {
	var (
		u        types.User
		prefs    []byte
		payments []byte
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Avatar,
		&u.PhoneNumber,
		&prefs,
		&payments,
		&u.LastActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(prefs, &u.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if err := decodeJSON(payments, &u.PaymentMethods); err != nil {
		return nil, fmt.Errorf("failed to decode payment methods: %w", err)
	}
	if u.PaymentMethods == nil {
		u.PaymentMethods = []types.PaymentMethod{}
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]*types.User, error) {
	if len(ids) == 0 {
		return []*types.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::text[]::uuid[]) ORDER BY name`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) Upsert(ctx context.Context, user *types.User) (*types.User, error) {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return nil, err
	}
	payments, err := json.Marshal(paymentMethodsOrEmpty(user.PaymentMethods))
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, name, email, avatar, phone_number, preferences, payment_methods, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET last_active = EXCLUDED.last_active
		RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Avatar,
		user.PhoneNumber,
		prefs,
		payments,
		user.LastActive,
	))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, user *types.User) error {
	prefs, err := json.Marshal(user.Preferences)
	if err != nil {
		return err
	}
	payments, err := json.Marshal(paymentMethodsOrEmpty(user.PaymentMethods))
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET name = $2, avatar = $3, phone_number = $4, preferences = $5,
		    payment_methods = $6, updated_at = NOW()
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, user.ID, user.Name, user.Avatar, user.PhoneNumber, prefs, payments)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func paymentMethodsOrEmpty(pm []types.PaymentMethod) []types.PaymentMethod {
	if pm == nil {
		return []types.PaymentMethod{}
	}
	return pm
}
