package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "PENDING"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentFullyPaid     PaymentStatus = "FULLY_PAID"
	PaymentOverdue       PaymentStatus = "OVERDUE"
)

const PaymentLevel1 = "LEVEL_1"

type Payment struct {
	ID            string          `json:"id"`
	ClientLeadID  string          `json:"clientLeadId"`
	Amount        decimal.Decimal `json:"amount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	AmountLeft    decimal.Decimal `json:"amountLeft"`
	Status        PaymentStatus   `json:"status"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	PaymentReason string          `json:"paymentReason,omitempty"`
	PaymentLevel  string          `json:"paymentLevel"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func NewPayment(leadID string, amount decimal.Decimal, dueDate *time.Time, reason string) *Payment {
	now := time.Now()
	return &Payment{
		ID:            uuid.New().String(),
		ClientLeadID:  leadID,
		Amount:        amount,
		AmountPaid:    decimal.Zero,
		AmountLeft:    amount,
		Status:        PaymentPending,
		DueDate:       dueDate,
		PaymentReason: reason,
		PaymentLevel:  PaymentLevel1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (p *Payment) Pending() decimal.Decimal {
	return p.Amount.Sub(p.AmountPaid)
}

// Apply records amount against p, keeping AmountLeft = Amount - AmountPaid.
func (p *Payment) Apply(amount decimal.Decimal) {
	p.AmountPaid = p.AmountPaid.Add(amount)
	p.AmountLeft = p.Amount.Sub(p.AmountPaid)
	if p.AmountPaid.GreaterThanOrEqual(p.Amount) {
		p.Status = PaymentFullyPaid
	} else {
		p.Status = PaymentPartiallyPaid
	}
	p.UpdatedAt = time.Now()
}

type Invoice struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"paymentId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Amount        decimal.Decimal `json:"amount"`
	IssuedDate    time.Time       `json:"issuedDate"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type ExtraService struct {
	ID           string          `json:"id"`
	ClientLeadID string          `json:"clientLeadId"`
	Price        decimal.Decimal `json:"price"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Note struct {
	ID           string    `json:"id"`
	ClientLeadID *string   `json:"clientLeadId,omitempty"`
	InvoiceID    *string   `json:"invoiceId,omitempty"`
	UserID       string    `json:"userId"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

type PaymentFilter struct {
	Status       PaymentStatus
	ClientLeadID string
	Page         int
	Limit        int
}

// ProcessedPayment is a payment merged with the invoice that recorded it.
type ProcessedPayment struct {
	Payment
	InvoiceID     string `json:"invoiceId"`
	InvoiceNumber string `json:"invoiceNumber"`
}
