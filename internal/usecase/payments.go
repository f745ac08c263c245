package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type PaymentUseCase struct {
	Tx       TxManager
	Payments PaymentRepositoryInterface
	Leads    LeadRepositoryInterface
	Invoices InvoiceNumberGenerator
	Now      func() time.Time
}

func NewPaymentUseCase(tx TxManager, payments PaymentRepositoryInterface, leads LeadRepositoryInterface, invoices InvoiceNumberGenerator) *PaymentUseCase {
	return &PaymentUseCase{
		Tx:       tx,
		Payments: payments,
		Leads:    leads,
		Invoices: invoices,
		Now:      time.Now,
	}
}

// SweepOverdue flips unpaid payments past their due date to OVERDUE.
func (uc *PaymentUseCase) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := uc.Payments.SweepOverdue(ctx, startOfDay(uc.Now()))
	if err != nil {
		return 0, fmt.Errorf("sweep overdue payments: %w", err)
	}
	if n > 0 {
		log.Printf("[PAYMENT] %d payments marked OVERDUE", n)
	}
	return n, nil
}

// GetPayments sweeps before listing so statuses are current.
func (uc *PaymentUseCase) GetPayments(ctx context.Context, filter entity.PaymentFilter) (*PageResult[entity.Payment], error) {
	if _, err := uc.SweepOverdue(ctx); err != nil {
		return nil, err
	}

	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	payments, total, err := uc.Payments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return &PageResult[entity.Payment]{Items: payments, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ProcessPayment records a partial or full payment and issues its invoice.
// Nothing changes when the amount is not in (0, pending].
func (uc *PaymentUseCase) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*entity.ProcessedPayment, error) {
	lng := NormalizeLang(input.Lng)

	if !input.Amount.IsPositive() {
		return nil, badRequest(CodeInvalidAmount, lng)
	}

	payment, err := uc.Payments.FindByID(ctx, input.PaymentID)
	if errors.Is(err, entity.ErrPaymentNotFound) {
		return nil, notFound(CodePaymentNotFound, lng)
	}
	if err != nil {
		return nil, fmt.Errorf("find payment %s: %w", input.PaymentID, err)
	}

	pending := payment.Pending()
	if input.Amount.GreaterThan(pending) {
		return nil, badRequest(CodePendingAmountExceeded, lng, pending.StringFixed(2))
	}

	issued := uc.Now()
	if input.IssuedDate != nil && !input.IssuedDate.IsZero() {
		issued = *input.IssuedDate
	}

	var out *entity.ProcessedPayment
	err = uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		updated, ok, err := uc.Payments.ApplyAmount(ctx, payment.ID, input.Amount)
		if err != nil {
			return err
		}
		if !ok {
			// someone else paid in between
			return badRequest(CodePendingAmountExceeded, lng, pending.StringFixed(2))
		}

		invoice := &entity.Invoice{
			ID:            uuid.New().String(),
			PaymentID:     updated.ID,
			InvoiceNumber: uc.Invoices.Next(),
			Amount:        input.Amount,
			IssuedDate:    issued,
			CreatedAt:     uc.Now(),
		}
		if err := uc.Payments.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		out = &entity.ProcessedPayment{
			Payment:       *updated,
			InvoiceID:     invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
		}
		return nil
	})
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("process payment %s: %w", payment.ID, err)
	}

	log.Printf("[PAYMENT] payment %s received %s, status %s, invoice %s",
		out.ID, input.Amount.StringFixed(2), out.Status, out.InvoiceNumber)
	return out, nil
}

// MakePayments creates the payment plan of a lead.
func (uc *PaymentUseCase) MakePayments(ctx context.Context, leadID string, items []PaymentItem, lng string) ([]*entity.Payment, error) {
	payments, err := uc.buildPayments(ctx, leadID, items, lng)
	if err != nil {
		return nil, err
	}

	err = uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		return uc.Payments.CreateMany(ctx, payments)
	})
	if err != nil {
		return nil, fmt.Errorf("make payments for %s: %w", leadID, err)
	}
	return payments, nil
}

// MakeExtraServicePayments is MakePayments plus one ExtraService row per item.
func (uc *PaymentUseCase) MakeExtraServicePayments(ctx context.Context, leadID string, items []PaymentItem, lng string) ([]*entity.Payment, error) {
	payments, err := uc.buildPayments(ctx, leadID, items, lng)
	if err != nil {
		return nil, err
	}

	err = uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.Payments.CreateMany(ctx, payments); err != nil {
			return err
		}
		for i, item := range items {
			es := &entity.ExtraService{
				ID:           uuid.New().String(),
				ClientLeadID: leadID,
				Price:        payments[i].Amount,
				Note:         strings.TrimSpace(item.Note),
				CreatedAt:    payments[i].CreatedAt,
			}
			if err := uc.Payments.CreateExtraService(ctx, es); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make extra service payments for %s: %w", leadID, err)
	}
	return payments, nil
}

func (uc *PaymentUseCase) AddInvoiceNote(ctx context.Context, actor entity.Actor, invoiceID, content, lng string) (*entity.Note, error) {
	lng = NormalizeLang(lng)
	if strings.TrimSpace(content) == "" {
		return nil, badRequest(CodeValidation, lng, "content is required")
	}

	if _, err := uc.Payments.FindInvoice(ctx, invoiceID); err != nil {
		if errors.Is(err, entity.ErrInvoiceNotFound) {
			return nil, notFound(CodeInvoiceNotFound, lng)
		}
		return nil, fmt.Errorf("find invoice %s: %w", invoiceID, err)
	}

	note := &entity.Note{
		ID:        uuid.New().String(),
		InvoiceID: &invoiceID,
		UserID:    actor.ID,
		Content:   strings.TrimSpace(content),
		CreatedAt: uc.Now(),
	}
	if err := uc.Payments.AddNote(ctx, note); err != nil {
		return nil, fmt.Errorf("add invoice note: %w", err)
	}
	return note, nil
}

func (uc *PaymentUseCase) buildPayments(ctx context.Context, leadID string, items []PaymentItem, lng string) ([]*entity.Payment, error) {
	lng = NormalizeLang(lng)
	if len(items) == 0 {
		return nil, badRequest(CodeValidation, lng, "at least one payment is required")
	}
	for _, item := range items {
		if !item.Amount.IsPositive() {
			return nil, badRequest(CodeInvalidAmount, lng)
		}
	}

	if _, err := uc.Leads.FindByID(ctx, leadID); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound(CodeLeadNotFound, lng)
		}
		return nil, fmt.Errorf("find lead %s: %w", leadID, err)
	}

	now := uc.Now()
	payments := make([]*entity.Payment, 0, len(items))
	for _, item := range items {
		p := entity.NewPayment(leadID, item.Amount.Round(2), item.DueDate, strings.TrimSpace(item.PaymentReason))
		p.CreatedAt = now
		p.UpdatedAt = now
		payments = append(payments, p)
	}
	return payments, nil
}
