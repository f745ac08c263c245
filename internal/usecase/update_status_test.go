package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

func TestUpdateStatusInvalid(t *testing.T) {
	f := newLeadFixture()

	_, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "WON"})

	assert.Equal(t, CodeInvalidStatus, domainCode(err))
	f.leads.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(nil, entity.ErrLeadNotFound)

	_, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "INTERESTED"})

	assert.Equal(t, CodeLeadNotFound, domainCode(err))
	assert.Equal(t, http.StatusNotFound, domainStatus(err))
}

func TestUpdateStatusLockedForStaff(t *testing.T) {
	for _, locked := range []entity.LeadStatus{entity.StatusFinalized, entity.StatusRejected, entity.StatusArchived, entity.StatusOnHold} {
		f := newLeadFixture()
		f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(locked, ptr("u1")), nil)

		_, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "INTERESTED"})

		assert.Equal(t, CodeStatusLocked, domainCode(err), locked)
	}
}

func TestUpdateStatusNotOwner(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusInProgress, ptr("u2")), nil)

	_, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "INTERESTED"})

	assert.Equal(t, CodeNotLeadOwner, domainCode(err))
}

func TestUpdateStatusConflict(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusInProgress, ptr("u1")), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusInProgress, entity.StatusInterested, (*time.Time)(nil)).Return(false, nil)

	_, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "INTERESTED"})

	assert.Equal(t, CodeStatusConflict, domainCode(err))
	assert.Equal(t, http.StatusConflict, domainStatus(err))
	f.leads.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}

func TestUpdateStatusFinalizeEnqueuesTelegram(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusNegotiating, ptr("u1")), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusNegotiating, entity.StatusFinalized, mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(fixedNow)
	})).Return(true, nil)
	f.leads.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	f.queue.On("PublishTelegramChannel", mock.Anything, mock.MatchedBy(func(job queue.TelegramChannelJob) bool {
		return job.LeadID == "lead-1" && job.Code == 2 && job.ClientName == "Mariam"
	})).Return(nil)

	lead, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "FINALIZED"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusFinalized, lead.Status)
	require.NotNil(t, lead.FinalizedDate)
	f.queue.AssertExpectations(t)
	f.payments.AssertNotCalled(t, "DeleteLedgerForLead", mock.Anything, mock.Anything)
	// owner changed their own lead
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestAdminRevertFinalizedClearsLedger(t *testing.T) {
	f := newLeadFixture()
	finalized := newLead(entity.StatusFinalized, ptr("u1"))
	finalized.FinalizedDate = ptr(fixedNow.AddDate(0, 0, -3))
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(finalized, nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusFinalized, entity.StatusNegotiating, (*time.Time)(nil)).Return(true, nil)
	f.payments.On("DeleteLedgerForLead", mock.Anything, "lead-1").Return(nil)
	f.leads.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in NotificationInput) bool {
		return in.UserID == "u1" && in.Type == entity.NotificationStatusChanged
	})).Return(nil, nil)

	lead, err := f.uc.UpdateLeadStatus(context.Background(), admin("a1"), UpdateStatusInput{LeadID: "lead-1", Status: "NEGOTIATING"})

	require.NoError(t, err)
	assert.Nil(t, lead.FinalizedDate)
	f.payments.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.queue.AssertNotCalled(t, "PublishTelegramChannel", mock.Anything, mock.Anything)
}

func TestRevertFinalizedLedgerFailureAbortsTransaction(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusFinalized, nil), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusFinalized, entity.StatusNew, (*time.Time)(nil)).Return(true, nil)
	f.payments.On("DeleteLedgerForLead", mock.Anything, "lead-1").Return(errors.New("fk violation"))

	_, err := f.uc.UpdateLeadStatus(context.Background(), admin("a1"), UpdateStatusInput{LeadID: "lead-1", Status: "NEW"})

	assert.ErrorContains(t, err, "fk violation")
	assert.False(t, IsDomainError(err))
	f.leads.AssertNotCalled(t, "AppendHistory", mock.Anything, mock.Anything)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusInterested, ptr("u1")), nil)

	lead, err := f.uc.UpdateLeadStatus(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "INTERESTED"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusInterested, lead.Status)
	assert.Equal(t, 0, f.tx.calls)
}

func TestMarkLeadOnHoldNotifiesManagerChain(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusInProgress, ptr("u1")), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusInProgress, entity.StatusOnHold, (*time.Time)(nil)).Return(true, nil)
	f.leads.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Omar", ManagerID: ptr("m1")}, nil)
	f.users.On("FindByID", mock.Anything, "m1").Return(&entity.User{ID: "m1", ManagerID: ptr("m2")}, nil)
	// m2 points back to u1: the walk must stop
	f.users.On("FindByID", mock.Anything, "m2").Return(&entity.User{ID: "m2", ManagerID: ptr("u1")}, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in NotificationInput) bool { return in.UserID == "m1" })).Return(nil, nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in NotificationInput) bool { return in.UserID == "m2" })).Return(nil, nil).Once()

	lead, err := f.uc.MarkLeadAsConverted(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "ON_HOLD"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusOnHold, lead.Status)
	f.notifier.AssertExpectations(t)
	f.notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestMarkLeadWithoutManagersNotifiesAdmins(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusInProgress, ptr("u1")), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusInProgress, entity.StatusConverted, (*time.Time)(nil)).Return(true, nil)
	f.leads.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Omar"}, nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(in NotificationInput) bool { return in.Admins })).Return(nil, nil)

	_, err := f.uc.MarkLeadAsConverted(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "CONVERTED"})

	require.NoError(t, err)
	f.notifier.AssertExpectations(t)
}

func TestMarkLeadRejectsOtherStatuses(t *testing.T) {
	f := newLeadFixture()

	_, err := f.uc.MarkLeadAsConverted(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: "FINALIZED"})

	assert.Equal(t, CodeInvalidStatus, domainCode(err))
}

func TestMarkLeadLockedForStaff(t *testing.T) {
	cases := map[entity.LeadStatus]string{
		entity.StatusFinalized: "ON_HOLD",
		entity.StatusRejected:  "ON_HOLD",
		entity.StatusArchived:  "ON_HOLD",
		entity.StatusOnHold:    "CONVERTED",
	}
	for locked, target := range cases {
		f := newLeadFixture()
		f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(locked, ptr("u1")), nil)

		_, err := f.uc.MarkLeadAsConverted(context.Background(), staff("u1"), UpdateStatusInput{LeadID: "lead-1", Status: target})

		assert.Equal(t, CodeStatusLocked, domainCode(err), locked)
		assert.Equal(t, http.StatusForbidden, domainStatus(err), locked)
		f.leads.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestMarkLeadAdminMayReleaseFinalized(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, "lead-1").Return(newLead(entity.StatusFinalized, ptr("u1")), nil)
	f.leads.On("TransitionStatus", mock.Anything, "lead-1", entity.StatusFinalized, entity.StatusOnHold, (*time.Time)(nil)).Return(true, nil)
	f.leads.On("AppendHistory", mock.Anything, mock.Anything).Return(nil)
	f.users.On("FindByID", mock.Anything, "u1").Return(&entity.User{ID: "u1", Name: "Omar"}, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil, nil)

	lead, err := f.uc.MarkLeadAsConverted(context.Background(), admin("a1"), UpdateStatusInput{LeadID: "lead-1", Status: "ON_HOLD"})

	require.NoError(t, err)
	assert.Equal(t, entity.StatusOnHold, lead.Status)
}
