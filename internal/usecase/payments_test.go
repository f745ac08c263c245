package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type paymentFixture struct {
	tx       *inlineTx
	payments *MockPaymentRepository
	leads    *MockLeadRepository
	uc       *PaymentUseCase
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		tx:       &inlineTx{},
		payments: new(MockPaymentRepository),
		leads:    new(MockLeadRepository),
	}
	f.uc = NewPaymentUseCase(f.tx, f.payments, f.leads, &sequentialInvoices{})
	f.uc.Now = clock
	return f
}

func payment(amount, paid string) *entity.Payment {
	p := entity.NewPayment("lead-1", decimal.RequireFromString(amount), nil, "Design fee")
	p.ID = "pay-1"
	p.AmountPaid = decimal.RequireFromString(paid)
	p.AmountLeft = p.Amount.Sub(p.AmountPaid)
	return p
}

func TestProcessPaymentPartial(t *testing.T) {
	f := newPaymentFixture()
	amount := decimal.RequireFromString("400")
	f.payments.On("FindByID", mock.Anything, "pay-1").Return(payment("1000", "0"), nil)

	updated := payment("1000", "0")
	updated.Apply(amount)
	f.payments.On("ApplyAmount", mock.Anything, "pay-1", amount).Return(updated, true, nil)
	f.payments.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(inv *entity.Invoice) bool {
		return inv.PaymentID == "pay-1" && inv.Amount.Equal(amount) && inv.InvoiceNumber == "INV-0001" && inv.IssuedDate.Equal(fixedNow)
	})).Return(nil)

	out, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-1", Amount: amount})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPartiallyPaid, out.Status)
	assert.True(t, out.AmountLeft.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, "INV-0001", out.InvoiceNumber)
	f.payments.AssertExpectations(t)
}

func TestProcessPaymentFullUsesIssuedDate(t *testing.T) {
	f := newPaymentFixture()
	amount := decimal.RequireFromString("250.50")
	issued := fixedNow.AddDate(0, 0, -2)
	f.payments.On("FindByID", mock.Anything, "pay-1").Return(payment("1000", "749.50"), nil)

	updated := payment("1000", "749.50")
	updated.Apply(amount)
	f.payments.On("ApplyAmount", mock.Anything, "pay-1", amount).Return(updated, true, nil)
	f.payments.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(inv *entity.Invoice) bool {
		return inv.IssuedDate.Equal(issued)
	})).Return(nil)

	out, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-1", Amount: amount, IssuedDate: &issued})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFullyPaid, out.Status)
	assert.True(t, out.AmountLeft.IsZero())
}

func TestProcessPaymentRejectsNonPositive(t *testing.T) {
	f := newPaymentFixture()

	for _, amount := range []string{"0", "-5"} {
		_, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-1", Amount: decimal.RequireFromString(amount)})
		assert.Equal(t, CodeInvalidAmount, domainCode(err), amount)
	}
	f.payments.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestProcessPaymentExceedsPending(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("FindByID", mock.Anything, "pay-1").Return(payment("1000", "900"), nil)

	_, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-1", Amount: decimal.RequireFromString("100.01"), Lng: "en"})

	assert.Equal(t, CodePendingAmountExceeded, domainCode(err))
	assert.Equal(t, http.StatusBadRequest, domainStatus(err))
	assert.Contains(t, err.Error(), "100.00")
	f.payments.AssertNotCalled(t, "ApplyAmount", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessPaymentConcurrentPaymentWins(t *testing.T) {
	f := newPaymentFixture()
	amount := decimal.RequireFromString("100")
	f.payments.On("FindByID", mock.Anything, "pay-1").Return(payment("1000", "900"), nil)
	f.payments.On("ApplyAmount", mock.Anything, "pay-1", amount).Return(nil, false, nil)

	_, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-1", Amount: amount})

	assert.Equal(t, CodePendingAmountExceeded, domainCode(err))
	f.payments.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestProcessPaymentNotFound(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("FindByID", mock.Anything, "pay-x").Return(nil, entity.ErrPaymentNotFound)

	_, err := f.uc.ProcessPayment(context.Background(), ProcessPaymentInput{PaymentID: "pay-x", Amount: decimal.NewFromInt(1)})

	assert.Equal(t, CodePaymentNotFound, domainCode(err))
}

func TestMakePaymentsCreatesPendingPlan(t *testing.T) {
	f := newPaymentFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusFinalized, nil), nil)
	f.payments.On("CreateMany", mock.Anything, mock.MatchedBy(func(ps []*entity.Payment) bool {
		if len(ps) != 2 {
			return false
		}
		for _, p := range ps {
			if p.Status != entity.PaymentPending || !p.AmountPaid.IsZero() || !p.AmountLeft.Equal(p.Amount) {
				return false
			}
		}
		return ps[0].Amount.Equal(decimal.RequireFromString("1000.13"))
	})).Return(nil)

	items := []PaymentItem{
		{Amount: decimal.RequireFromString("1000.125"), PaymentReason: "Deposit"},
		{Amount: decimal.NewFromInt(2000), PaymentReason: "Final"},
	}
	out, err := f.uc.MakePayments(context.Background(), "lead-1", items, "en")

	require.NoError(t, err)
	assert.Len(t, out, 2)
	f.payments.AssertExpectations(t)
}

func TestMakePaymentsValidation(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.uc.MakePayments(context.Background(), "lead-1", nil, "en")
	assert.Equal(t, CodeValidation, domainCode(err))

	_, err = f.uc.MakePayments(context.Background(), "lead-1", []PaymentItem{{Amount: decimal.Zero}}, "en")
	assert.Equal(t, CodeInvalidAmount, domainCode(err))
}

func TestMakeExtraServicePaymentsAddsServiceRows(t *testing.T) {
	f := newPaymentFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusFinalized, nil), nil)
	f.payments.On("CreateMany", mock.Anything, mock.Anything).Return(nil)
	f.payments.On("CreateExtraService", mock.Anything, mock.MatchedBy(func(es *entity.ExtraService) bool {
		return es.ClientLeadID == "lead-1" && es.Note == "3D renders"
	})).Return(nil).Once()

	_, err := f.uc.MakeExtraServicePayments(context.Background(), "lead-1",
		[]PaymentItem{{Amount: decimal.NewFromInt(300), Note: " 3D renders "}}, "ar")

	require.NoError(t, err)
	f.payments.AssertExpectations(t)
}

func TestSweepOverdueUsesStartOfToday(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("SweepOverdue", mock.Anything, startOfDay(fixedNow)).Return(int64(4), nil)

	n, err := f.uc.SweepOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestGetPaymentsSweepsFirst(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("SweepOverdue", mock.Anything, mock.Anything).Return(int64(0), nil)
	f.payments.On("List", mock.Anything, entity.PaymentFilter{Status: entity.PaymentOverdue, Page: 1, Limit: 20}).
		Return([]entity.Payment{*payment("10", "0")}, 1, nil)

	page, err := f.uc.GetPayments(context.Background(), entity.PaymentFilter{Status: entity.PaymentOverdue})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
}

func TestAddInvoiceNote(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("FindInvoice", mock.Anything, "inv-1").Return(&entity.Invoice{ID: "inv-1"}, nil)
	f.payments.On("AddNote", mock.Anything, mock.MatchedBy(func(n *entity.Note) bool {
		return *n.InvoiceID == "inv-1" && n.UserID == "u1" && n.Content == "paid by cheque"
	})).Return(nil)

	note, err := f.uc.AddInvoiceNote(context.Background(), staff("u1"), "inv-1", "  paid by cheque ", "en")

	require.NoError(t, err)
	assert.Equal(t, "paid by cheque", note.Content)
}

func TestAddInvoiceNoteMissingInvoice(t *testing.T) {
	f := newPaymentFixture()
	f.payments.On("FindInvoice", mock.Anything, "inv-x").Return(nil, entity.ErrInvoiceNotFound)

	_, err := f.uc.AddInvoiceNote(context.Background(), staff("u1"), "inv-x", "hello", "en")

	assert.Equal(t, CodeInvoiceNotFound, domainCode(err))
}
