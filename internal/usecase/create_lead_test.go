package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type leadFixture struct {
	tx       *inlineTx
	clients  *MockClientRepository
	leads    *MockLeadRepository
	users    *MockUserRepository
	payments *MockPaymentRepository
	notifier *MockNotifier
	queue    *MockQueueProducer
	uc       *LeadUseCase
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		tx:       &inlineTx{},
		clients:  new(MockClientRepository),
		leads:    new(MockLeadRepository),
		users:    new(MockUserRepository),
		payments: new(MockPaymentRepository),
		notifier: new(MockNotifier),
		queue:    new(MockQueueProducer),
	}
	f.uc = NewLeadUseCase(f.tx, f.clients, f.leads, f.users, f.payments, f.notifier, f.queue, 7)
	f.uc.Now = clock
	return f
}

func validLeadInput() CreateLeadInput {
	return CreateLeadInput{
		Name:        "Mariam Al Zaabi",
		Email:       "Mariam@Example.com",
		Phone:       "+971 50 123 4567",
		Category:    "RESIDENTIAL",
		Item:        "Villa",
		PriceOption: "400,000 to 600,000 AED",
		Country:     "AE",
		Emirate:     "DUBAI",
		Lng:         "en",
	}
}

func TestCreateLeadSuccess(t *testing.T) {
	f := newLeadFixture()
	f.clients.On("UpsertByEmail", mock.Anything, mock.MatchedBy(func(c *entity.Client) bool {
		return c.Email == "mariam@example.com"
	})).Return(nil)
	f.clients.On("Lock", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("CreateIfNoneSince", mock.Anything, mock.AnythingOfType("*entity.ClientLead"), startOfDay(fixedNow)).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.ClientLead).Code = 3
		}).Return(true, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in NotificationInput) bool {
		return in.Admins && in.Type == entity.NotificationNewLead && in.LeadID != nil
	})).Return(nil, nil)

	out, err := f.uc.CreateLead(context.Background(), validLeadInput())

	require.NoError(t, err)
	assert.Equal(t, 3, out.Lead.Code)
	assert.Equal(t, entity.StatusNew, out.Lead.Status)
	assert.Equal(t, out.Client.ID, out.Lead.ClientID)
	require.NotNil(t, out.Lead.AveragePrice)
	assert.Equal(t, 500000.0, *out.Lead.AveragePrice)
	assert.Equal(t, "Your request has been received successfully", out.Message)
	assert.Equal(t, 1, f.tx.calls)
	f.notifier.AssertExpectations(t)
}

func TestCreateLeadDuplicateSameDay(t *testing.T) {
	f := newLeadFixture()
	f.clients.On("UpsertByEmail", mock.Anything, mock.Anything).Return(nil)
	f.clients.On("Lock", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("CreateIfNoneSince", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	input := validLeadInput()
	input.Lng = "ar"
	_, err := f.uc.CreateLead(context.Background(), input)

	assert.Equal(t, CodeLeadDuplicateToday, domainCode(err))
	assert.Equal(t, http.StatusUnprocessableEntity, domainStatus(err))
	assert.Contains(t, err.Error(), "لقد قمت بإرسال طلب اليوم")
	assert.True(t, f.tx.rolledBack, "client upsert must not commit for a rejected submission")
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newLeadFixture()

	_, err := f.uc.CreateLead(context.Background(), CreateLeadInput{Email: "nope", Phone: "12", Lng: "en"})

	assert.Equal(t, CodeValidation, domainCode(err))
	assert.Equal(t, http.StatusBadRequest, domainStatus(err))
	assert.Contains(t, err.Error(), "name: is required")
	assert.Contains(t, err.Error(), "email: is invalid")
	f.clients.AssertNotCalled(t, "UpsertByEmail", mock.Anything, mock.Anything)
}

func TestCreateLeadNotifyFailureDoesNotFail(t *testing.T) {
	f := newLeadFixture()
	f.clients.On("UpsertByEmail", mock.Anything, mock.Anything).Return(nil)
	f.clients.On("Lock", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("CreateIfNoneSince", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil, errors.New("smtp down"))

	_, err := f.uc.CreateLead(context.Background(), validLeadInput())

	assert.NoError(t, err)
}

func TestParsePriceOption(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"400,000 to 600,000 AED", 500000, true},
		{"Above 1,000,000 AED", 1000000, true},
		{"150000-250000", 200000, true},
		{"12.5 to 17.5", 15, true},
		{"Not sure", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePriceOption(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}
