package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `
	id, client_lead_id, amount, amount_paid, amount_left, status, due_date,
	COALESCE(payment_reason, ''), payment_level, created_at, updated_at`

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.ClientLeadID, &p.Amount, &p.AmountPaid, &p.AmountLeft, &p.Status, &p.DueDate,
		&p.PaymentReason, &p.PaymentLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SweepOverdue marks unpaid payments due before today as OVERDUE. Running it
// twice changes nothing the second time.
func (r *PaymentRepository) SweepOverdue(ctx context.Context, today time.Time) (int64, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE due_date < $2
		  AND status IN ($3, $4)
		  AND amount_left > 0
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		entity.PaymentOverdue, today, entity.PaymentPending, entity.PaymentPartiallyPaid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PaymentRepository) List(ctx context.Context, filter entity.PaymentFilter) ([]entity.Payment, int, error) {
	w := &whereBuilder{}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.ClientLeadID != "" {
		w.add("client_lead_id = ?", filter.ClientLeadID)
	}

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments`+w.String(), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + w.String() +
		` ORDER BY due_date ASC NULLS LAST, created_at ASC LIMIT ` + w.next(filter.Limit) +
		` OFFSET ` + w.next((filter.Page-1)*filter.Limit)

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []entity.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, rows.Err()
}

func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	p, err := scanPayment(conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPaymentNotFound
	}
	return p, err
}

// ApplyAmount adds amount to amount_paid in a single statement guarded by the
// pending amount. ok is false when another payment got there first.
func (r *PaymentRepository) ApplyAmount(ctx context.Context, id string, amount decimal.Decimal) (*entity.Payment, bool, error) {
	query := `
		UPDATE payments
		SET amount_paid = amount_paid + $2,
		    amount_left = amount - (amount_paid + $2),
		    status = CASE WHEN amount_paid + $2 >= amount THEN $3 ELSE $4 END,
		    updated_at = NOW()
		WHERE id = $1 AND amount - amount_paid >= $2
		RETURNING ` + paymentColumns

	p, err := scanPayment(conn(ctx, r.DB).QueryRowContext(ctx, query,
		id, amount, entity.PaymentFullyPaid, entity.PaymentPartiallyPaid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("apply amount to payment %s: %w", id, err)
	}
	return p, true, nil
}

func (r *PaymentRepository) CreateInvoice(ctx context.Context, inv *entity.Invoice) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO invoices (id, payment_id, invoice_number, amount, issued_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.PaymentID, inv.InvoiceNumber, inv.Amount, inv.IssuedDate, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

func (r *PaymentRepository) FindInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT id, payment_id, invoice_number, amount, issued_date, created_at FROM invoices WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.PaymentID, &inv.InvoiceNumber, &inv.Amount, &inv.IssuedDate, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PaymentRepository) CreateMany(ctx context.Context, payments []*entity.Payment) error {
	query := `
		INSERT INTO payments (
			id, client_lead_id, amount, amount_paid, amount_left, status, due_date,
			payment_reason, payment_level, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	db := conn(ctx, r.DB)
	for _, p := range payments {
		_, err := db.ExecContext(ctx, query,
			p.ID, p.ClientLeadID, p.Amount, p.AmountPaid, p.AmountLeft, p.Status, p.DueDate,
			nullString(p.PaymentReason), p.PaymentLevel, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert payment for lead %s: %w", p.ClientLeadID, err)
		}
	}
	return nil
}

func (r *PaymentRepository) CreateExtraService(ctx context.Context, es *entity.ExtraService) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO extra_services (id, client_lead_id, price, note, created_at) VALUES ($1, $2, $3, $4, $5)`,
		es.ID, es.ClientLeadID, es.Price, nullString(es.Note), es.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert extra service for lead %s: %w", es.ClientLeadID, err)
	}
	return nil
}

func (r *PaymentRepository) AddNote(ctx context.Context, note *entity.Note) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO notes (id, client_lead_id, invoice_id, user_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		note.ID, note.ClientLeadID, note.InvoiceID, nullString(note.UserID), note.Content, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// DeleteLedgerForLead removes invoice notes, invoices, payments and extra
// services of the lead. Meant to run inside the caller's transaction.
func (r *PaymentRepository) DeleteLedgerForLead(ctx context.Context, leadID string) error {
	steps := []struct {
		name  string
		query string
	}{
		{"invoice notes", `DELETE FROM notes WHERE invoice_id IN (
			SELECT i.id FROM invoices i JOIN payments p ON p.id = i.payment_id WHERE p.client_lead_id = $1)`},
		{"invoices", `DELETE FROM invoices WHERE payment_id IN (SELECT id FROM payments WHERE client_lead_id = $1)`},
		{"payments", `DELETE FROM payments WHERE client_lead_id = $1`},
		{"extra services", `DELETE FROM extra_services WHERE client_lead_id = $1`},
	}

	db := conn(ctx, r.DB)
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.query, leadID); err != nil {
			return fmt.Errorf("delete %s of lead %s: %w", s.name, leadID, err)
		}
	}
	return nil
}
