package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

// UpsertByEmail inserts c or refreshes the name and phone of the client that
// already owns the email. c.ID and c.CreatedAt are set to the stored row.
func (r *ClientRepository) UpsertByEmail(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email)
		DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone
		RETURNING id, created_at
	`

	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert client %s: %w", c.Email, err)
	}
	return nil
}

// Lock takes the row lock of the client for the rest of the transaction.
func (r *ClientRepository) Lock(ctx context.Context, id string) error {
	var got string
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id FROM clients WHERE id = $1 FOR UPDATE`, id,
	).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrClientNotFound
	}
	return err
}
