package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	l.id, l.client_id, l.user_id, l.status, l.selected_category,
	COALESCE(l.item, ''), COALESCE(l.description, ''), COALESCE(l.price_option, ''),
	l.price, l.average_price, l.price_without_discount, l.discount,
	COALESCE(l.country, ''), COALESCE(l.emirate, ''), l.lead_type, l.previous_lead_id,
	l.assigned_at, l.finalized_date, l.code, l.created_at, l.updated_at,
	c.id, c.name, c.email, c.phone, c.created_at`

const leadFrom = ` FROM client_leads l JOIN clients c ON c.id = l.client_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.ClientLead, error) {
	var l entity.ClientLead
	var c entity.Client
	err := row.Scan(
		&l.ID, &l.ClientID, &l.UserID, &l.Status, &l.SelectedCategory,
		&l.Item, &l.Description, &l.PriceOption,
		&l.Price, &l.AveragePrice, &l.PriceWithOutDiscount, &l.Discount,
		&l.Country, &l.Emirate, &l.LeadType, &l.PreviousLeadID,
		&l.AssignedAt, &l.FinalizedDate, &l.Code, &l.CreatedAt, &l.UpdatedAt,
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Client = &c
	return &l, nil
}

// CreateIfNoneSince inserts lead with code = last code of the client + 1,
// unless the client already has a lead created at or after since. Callers
// hold the client row lock so two requests cannot both pass the check.
func (r *LeadRepository) CreateIfNoneSince(ctx context.Context, lead *entity.ClientLead, since time.Time) (bool, error) {
	query := `
		INSERT INTO client_leads (
			id, client_id, status, selected_category, item, description, price_option,
			price, average_price, country, emirate, lead_type, code, created_at, updated_at
		)
		SELECT $1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, $7::text,
			$8::float8, $9::float8, $10::text, $11::text, $12::text,
			COALESCE((SELECT MAX(code) FROM client_leads WHERE client_id = $2::uuid), 0) + 1,
			$13::timestamptz, $13::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM client_leads WHERE client_id = $2::uuid AND created_at >= $14::timestamptz
		)
		RETURNING code
	`

	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		lead.ID, lead.ClientID, lead.Status, lead.SelectedCategory,
		nullString(lead.Item), nullString(lead.Description), nullString(lead.PriceOption),
		lead.Price, lead.AveragePrice, nullString(lead.Country), nullString(lead.Emirate),
		lead.LeadType, lead.CreatedAt, since,
	).Scan(&lead.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert lead: %w", err)
	}
	return true, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.ClientLead, error) {
	row := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT `+leadColumns+leadFrom+` WHERE l.id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

// Insert stores a lead as is, keeping its code. Used for shadow leads, which
// continue the numbering of the lead they replace.
func (r *LeadRepository) Insert(ctx context.Context, lead *entity.ClientLead) error {
	query := `
		INSERT INTO client_leads (
			id, client_id, user_id, status, selected_category, item, description, price_option,
			price, average_price, price_without_discount, discount, country, emirate,
			lead_type, previous_lead_id, assigned_at, code, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			COALESCE((SELECT code FROM client_leads WHERE id = $16), 0), $18, $19)
		RETURNING code
	`

	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		lead.ID, lead.ClientID, lead.UserID, lead.Status, lead.SelectedCategory,
		nullString(lead.Item), nullString(lead.Description), nullString(lead.PriceOption),
		lead.Price, lead.AveragePrice, lead.PriceWithOutDiscount, lead.Discount,
		nullString(lead.Country), nullString(lead.Emirate),
		lead.LeadType, lead.PreviousLeadID, lead.AssignedAt, lead.CreatedAt, lead.UpdatedAt,
	).Scan(&lead.Code)
	if err != nil {
		return fmt.Errorf("insert lead %s: %w", lead.ID, err)
	}
	return nil
}

// Claim gives the lead to userID only while its status is one of from.
func (r *LeadRepository) Claim(ctx context.Context, id, userID string, from []entity.LeadStatus, at time.Time) (bool, error) {
	query := `
		UPDATE client_leads
		SET user_id = $2, status = $3, assigned_at = $4, updated_at = $4
		WHERE id = $1 AND status = ANY($5::text[])
		RETURNING id
	`
	var got string
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		id, userID, entity.StatusInProgress, at, pq.Array(statusStrings(from)),
	).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim lead %s: %w", id, err)
	}
	return true, nil
}

func (r *LeadRepository) BulkAssign(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE client_leads
		SET user_id = $2, status = $3, assigned_at = $4, updated_at = $4
		WHERE id = ANY($1::uuid[])
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, pq.Array(ids), userID, entity.StatusInProgress, at)
	if err != nil {
		return 0, fmt.Errorf("bulk assign leads: %w", err)
	}
	return res.RowsAffected()
}

// TransitionStatus moves the lead from -> to only if nobody changed it since
// it was read. finalizedDate replaces the stored value, nil clears it.
func (r *LeadRepository) TransitionStatus(ctx context.Context, id string, from, to entity.LeadStatus, finalizedDate *time.Time) (bool, error) {
	query := `
		UPDATE client_leads
		SET status = $3, finalized_date = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, id, from, to, finalizedDate)
	if err != nil {
		return false, fmt.Errorf("update status of lead %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *LeadRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_leads WHERE user_id = $1 AND status <> ALL($2::text[])`,
		userID, pq.Array(statusStrings(entity.InactiveStatuses)),
	).Scan(&n)
	return n, err
}

func (r *LeadRepository) CountAssignedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_leads WHERE user_id = $1 AND assigned_at >= $2`,
		userID, since,
	).Scan(&n)
	return n, err
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.ClientLead, int, error) {
	w := leadWhere(filter)

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*)`+leadFrom+w.String(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT ` + leadColumns + leadFrom + w.String() +
		` ORDER BY l.created_at DESC LIMIT ` + w.next(filter.Limit) +
		` OFFSET ` + w.next((filter.Page-1)*filter.Limit)

	leads, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListOverdue returns leads waiting ON_HOLD and active leads assigned before
// assignedBefore, oldest assignment first.
func (r *LeadRepository) ListOverdue(ctx context.Context, assignedBefore time.Time, page, limit int) ([]entity.ClientLead, error) {
	w := &whereBuilder{}
	w.add("(l.status = ? OR (l.status <> ALL(?::text[]) AND l.assigned_at < ?))",
		entity.StatusOnHold, pq.Array(statusStrings(entity.InactiveStatuses)), assignedBefore)

	query := `SELECT ` + leadColumns + leadFrom + w.String() +
		` ORDER BY l.assigned_at ASC NULLS LAST LIMIT ` + w.next(limit) +
		` OFFSET ` + w.next((page-1)*limit)

	return r.query(ctx, query, w.args...)
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]entity.ClientLead, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.ClientLead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) AppendHistory(ctx context.Context, change entity.LeadStatusChange) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO lead_status_history (lead_id, user_id, old_status, new_status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		change.LeadID, nullString(change.UserID), change.OldStatus, change.NewStatus, change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history of lead %s: %w", change.LeadID, err)
	}
	return nil
}

func (r *LeadRepository) History(ctx context.Context, leadID string) ([]entity.LeadStatusChange, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT lead_id, COALESCE(user_id::text, ''), old_status, new_status, created_at
		 FROM lead_status_history WHERE lead_id = $1 ORDER BY created_at ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []entity.LeadStatusChange{}
	for rows.Next() {
		var h entity.LeadStatusChange
		if err := rows.Scan(&h.LeadID, &h.UserID, &h.OldStatus, &h.NewStatus, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// FilesChain returns the files of the lead and of every lead it was shadowed
// from, following previous_lead_id.
func (r *LeadRepository) FilesChain(ctx context.Context, leadID string) ([]entity.LeadFile, error) {
	query := `
		WITH RECURSIVE chain(id, prev, depth) AS (
			SELECT id, previous_lead_id, 0 FROM client_leads WHERE id = $1
			UNION ALL
			SELECT l.id, l.previous_lead_id, chain.depth + 1
			FROM client_leads l JOIN chain ON l.id = chain.prev
			WHERE chain.depth < 50
		)
		SELECT f.id, f.client_lead_id, f.name, f.url, f.created_at
		FROM lead_files f JOIN chain ON f.client_lead_id = chain.id
		ORDER BY f.created_at ASC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []entity.LeadFile{}
	for rows.Next() {
		var f entity.LeadFile
		if err := rows.Scan(&f.ID, &f.ClientLeadID, &f.Name, &f.URL, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
