package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/pkg/logger"
)

const profilesTable = "identity_profiles"

var profileColumns = []string{"id", "owner_id", "title", "description", "data", "chosen", "created_at", "updated_at"}

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, logger logger.Logger) profile.Repository {
	return &postgresProfileRepo{db: db, logger: logger}
}

func (r *postgresProfileRepo) scanProfile(row pgx.Row) (profile.Profile, error) {
	var (
		p         profile.Profile
		id        uuid.UUID
		dataBytes []byte
	)
	err := row.Scan(
		&id,
		&p.OwnerID,
		&p.Title,
		&p.Description,
		&dataBytes,
		&p.Chosen,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return profile.Profile{}, err
	}
	p.ID = &id

	if len(dataBytes) > 0 {
		if err := json.Unmarshal(dataBytes, &p.Data); err != nil {
			r.logger.Warn("Failed to unmarshal profile data", zap.String("profile_id", id.String()), zap.Error(err))
			p.Data = profile.Data{}
		}
	}
	return p, nil
}

func (r *postgresProfileRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]profile.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From(profilesTable).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles by owner: %w", err)
	}
	defer rows.Close()

	profiles := make([]profile.Profile, 0)
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return profiles, nil
}

// Insert stores a draft and writes the server-assigned id and timestamps back into p.
func (r *postgresProfileRepo) Insert(ctx context.Context, p *profile.Profile) error {
	dataBytes, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal profile data: %w", err)
	}

	query, args, err := psql.Insert(profilesTable).
		Columns("owner_id", "title", "description", "data", "chosen").
		Values(p.OwnerID, p.Title, p.Description, dataBytes, p.Chosen).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert: %w", err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	p.ID = &id
	return nil
}

// Update writes display metadata and data. The chosen flag is only ever
// written by ChooseActive.
func (r *postgresProfileRepo) Update(ctx context.Context, p *profile.Profile) error {
	if p.ID == nil {
		return profile.ErrDraftNotPersisted
	}
	dataBytes, err := json.Marshal(p.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal profile data for update: %w", err)
	}

	query, args, err := psql.Update(profilesTable).
		Set("title", p.Title).
		Set("description", p.Description).
		Set("data", dataBytes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": *p.ID, "owner_id": p.OwnerID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile update: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.ErrProfileNotFound
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// ChooseActive moves the owner's chosen flag to id in one transaction, so the
// partial unique index on (owner_id) WHERE chosen never sees two rows.
func (r *postgresProfileRepo) ChooseActive(ctx context.Context, id, ownerID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT true FROM identity_profiles WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
			id, ownerID,
		).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return profile.ErrProfileNotFound
			}
			return fmt.Errorf("failed to lock profile: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE identity_profiles SET chosen = false, updated_at = NOW() WHERE owner_id = $1 AND chosen AND id <> $2`,
			ownerID, id,
		); err != nil {
			return fmt.Errorf("failed to clear chosen profile: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE identity_profiles SET chosen = true, updated_at = NOW() WHERE id = $1 AND owner_id = $2`,
			id, ownerID,
		); err != nil {
			return fmt.Errorf("failed to set chosen profile: %w", err)
		}
		return nil
	})
}

// Delete never removes a chosen row, even one that was chosen after the
// caller last looked at it.
func (r *postgresProfileRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	query, args, err := psql.Delete(profilesTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID, "chosen": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile delete: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	query, args, err = psql.Select("chosen").
		From(profilesTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile lookup: %w", err)
	}
	var chosen bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&chosen); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.ErrProfileNotFound
		}
		return fmt.Errorf("failed to look up profile: %w", err)
	}
	if chosen {
		return profile.ErrActiveProfileDelete
	}
	return profile.ErrProfileNotFound
}

func (r *postgresProfileRepo) FindChosenByOwner(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, error) {
	query, args, err := psql.Select(profileColumns...).
		From(profilesTable).
		Where(sq.Eq{"owner_id": ownerID, "chosen": true}).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chosen profile query: %w", err)
	}

	p, err := r.scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to query chosen profile: %w", err)
	}
	return &p, nil
}
