package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, role, is_active, account_status, manager_id,
	max_leads_counts, max_lead_count_per_day, not_allowed_countries, created_at`

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var countries pq.StringArray
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.AccountStatus, &u.ManagerID,
		&u.MaxLeadsCounts, &u.MaxLeadCountPerDay, &countries, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.NotAllowedCountries = []string(countries)
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email)
}

// LockByID reads the user holding its row lock, serialising assignments to
// the same user.
func (r *UserRepository) LockByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles []entity.Role) ([]entity.User, error) {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = ANY($1::text[]) AND is_active AND account_status = $2
		 ORDER BY created_at`,
		pq.Array(names), entity.AccountActive)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u, err := scanUser(conn(ctx, r.DB).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	return u, err
}
