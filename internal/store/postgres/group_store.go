package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NomadCrew/nomad-split-backend/internal/store"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure GroupStore implements store.GroupStore interface.
var _ store.GroupStore = (*GroupStore)(nil)

// Members are aggregated in join order so the creator stays first.
const groupColumns = `
	g.id::text, g.name, g.description, g.created_by::text, g.currency, g.category, g.is_active,
	g.total_expenses::text, g.settled_expenses::text, g.last_activity, g.settings,
	COALESCE((
		SELECT jsonb_agg(jsonb_build_object(
			'userId', m.user_id::text, 'role', m.role, 'joinedAt', m.joined_at
		) ORDER BY m.joined_at, m.user_id)
		FROM group_members m WHERE m.group_id = g.id
	), '[]'::jsonb),
	g.created_at, g.updated_at`

type GroupStore struct {
	db DBTX
}

func NewGroupStore(db DBTX) *GroupStore {
	return &GroupStore{db: db}
}

func scanGroup(row pgx.Row) (*types.Group, error) {
	var (
		g        types.Group
		settings []byte
		members  []byte
	)
	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.CreatedBy,
		&g.Currency,
		&g.Category,
		&g.IsActive,
		&g.TotalExpenses,
		&g.SettledExpenses,
		&g.LastActivity,
		&settings,
		&members,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(settings, &g.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode group settings: %w", err)
	}
	if err := decodeJSON(members, &g.Members); err != nil {
		return nil, fmt.Errorf("failed to decode group members: %w", err)
	}
	if g.Members == nil {
		g.Members = []types.GroupMember{}
	}
	return &g, nil
}

func (s *GroupStore) Create(ctx context.Context, group *types.Group) error {
	settings, err := json.Marshal(group.Settings)
	if err != nil {
		return err
	}

	return withTx(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO groups (id, name, description, created_by, currency, category, is_active,
			                    total_expenses, settled_expenses, last_activity, settings, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			group.ID,
			group.Name,
			group.Description,
			group.CreatedBy,
			group.Currency,
			group.Category,
			group.IsActive,
			group.TotalExpenses,
			group.SettledExpenses,
			group.LastActivity,
			settings,
			group.CreatedAt,
			group.UpdatedAt,
		)
		if err != nil {
			return mapError(err)
		}

		for _, m := range group.Members {
			if err := insertMember(ctx, tx, group.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertMember(ctx context.Context, db execer, groupID string, m types.GroupMember) error {
	_, err := db.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GroupStore) GetByID(ctx context.Context, id string) (*types.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1 AND g.is_active`
	g, err := scanGroup(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

func (s *GroupStore) Update(ctx context.Context, group *types.Group) error {
	settings, err := json.Marshal(group.Settings)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE groups
		SET name = $2, description = $3, currency = $4, category = $5, settings = $6, updated_at = $7
		WHERE id = $1 AND is_active`,
		group.ID, group.Name, group.Description, group.Currency, group.Category, settings, group.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE groups SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) ListByMember(ctx context.Context, userID string, offset, limit int) ([]*types.Group, int, error) {
	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id AND gm.user_id = $1
		WHERE g.is_active`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id AND gm.user_id = $1
		WHERE g.is_active
		ORDER BY g.last_activity DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` OFFSET $2 LIMIT $3`
		args = append(args, offset, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []*types.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (s *GroupStore) AddMember(ctx context.Context, groupID string, member types.GroupMember) error {
	return insertMember(ctx, s.db, groupID, member)
}

func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *GroupStore) UpdateTotals(ctx context.Context, groupID string, totals store.GroupTotals, lastActivity time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE groups
		SET total_expenses = $2, settled_expenses = $3, last_activity = $4, updated_at = NOW()
		WHERE id = $1`,
		groupID, totals.Total, totals.Settled, lastActivity)
	return mapError(err)
}
