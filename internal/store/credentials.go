package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// credentialRow maps the single credentials row.
type credentialRow struct {
	bun.BaseModel `bun:"table:credentials"`

	ID           int       `bun:"id,pk"`
	AccessToken  string    `bun:"access_token,notnull"`
	RefreshToken string    `bun:"refresh_token,notnull"`
	Email        string    `bun:"email,notnull"`
	FirstName    string    `bun:"first_name,notnull"`
	LastName     string    `bun:"last_name,notnull"`
	Grade        string    `bun:"grade,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// credentialRepo implements CredentialRepo on a single-row table.
type credentialRepo struct {
	db *bun.DB
}

func (r *credentialRepo) Save(ctx context.Context, c Credentials) error {
	row := &credentialRow{
		ID:           1,
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Email:        c.Email,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Grade:        c.Grade,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("email = EXCLUDED.email").
		Set("first_name = EXCLUDED.first_name").
		Set("last_name = EXCLUDED.last_name").
		Set("grade = EXCLUDED.grade").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (r *credentialRepo) Load(ctx context.Context) (*Credentials, error) {
	var row credentialRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", 1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return &Credentials{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Grade:        row.Grade,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (r *credentialRepo) UpdateAccess(ctx context.Context, access string) error {
	_, err := r.db.NewUpdate().
		Model((*credentialRow)(nil)).
		Set("access_token = ?", access).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", 1).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	return nil
}

func (r *credentialRepo) Clear(ctx context.Context) error {
	_, err := r.db.NewDelete().Model((*credentialRow)(nil)).Where("id = ?", 1).Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
