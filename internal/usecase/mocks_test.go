package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/storage"
	"github.com/xavierca1/dreamstudio-crm/internal/pdf"
)

// inlineTx runs fn without a database; rollback is the mocks' business.
type inlineTx struct {
	calls      int
	rolledBack bool
}

func (t *inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	err := fn(ctx)
	t.rolledBack = err != nil
	return err
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) UpsertByEmail(ctx context.Context, c *entity.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Lock(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) CreateIfNoneSince(ctx context.Context, lead *entity.ClientLead, since time.Time) (bool, error) {
	args := m.Called(ctx, lead, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.ClientLead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientLead), args.Error(1)
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.ClientLead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) Claim(ctx context.Context, id, userID string, from []entity.LeadStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, userID, from, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) BulkAssign(ctx context.Context, ids []string, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) TransitionStatus(ctx context.Context, id string, from, to entity.LeadStatus, finalizedDate *time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, finalizedDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) CountAssignedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]entity.ClientLead, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]entity.ClientLead), args.Int(1), args.Error(2)
}

func (m *MockLeadRepository) ListOverdue(ctx context.Context, assignedBefore time.Time, page, limit int) ([]entity.ClientLead, error) {
	args := m.Called(ctx, assignedBefore, page, limit)
	return args.Get(0).([]entity.ClientLead), args.Error(1)
}

func (m *MockLeadRepository) AppendHistory(ctx context.Context, change entity.LeadStatusChange) error {
	return m.Called(ctx, change).Error(0)
}

func (m *MockLeadRepository) History(ctx context.Context, leadID string) ([]entity.LeadStatusChange, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]entity.LeadStatusChange), args.Error(1)
}

func (m *MockLeadRepository) FilesChain(ctx context.Context, leadID string) ([]entity.LeadFile, error) {
	args := m.Called(ctx, leadID)
	return args.Get(0).([]entity.LeadFile), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) LockByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ListActiveByRoles(ctx context.Context, roles []entity.Role) ([]entity.User, error) {
	args := m.Called(ctx, roles)
	return args.Get(0).([]entity.User), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SweepOverdue(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, filter entity.PaymentFilter) ([]entity.Payment, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]entity.Payment), args.Int(1), args.Error(2)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id string) (*entity.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ApplyAmount(ctx context.Context, id string, amount decimal.Decimal) (*entity.Payment, bool, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Payment), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepository) CreateInvoice(ctx context.Context, inv *entity.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockPaymentRepository) FindInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockPaymentRepository) CreateMany(ctx context.Context, payments []*entity.Payment) error {
	return m.Called(ctx, payments).Error(0)
}

func (m *MockPaymentRepository) CreateExtraService(ctx context.Context, es *entity.ExtraService) error {
	return m.Called(ctx, es).Error(0)
}

func (m *MockPaymentRepository) AddNote(ctx context.Context, note *entity.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockPaymentRepository) DeleteLedgerForLead(ctx context.Context, leadID string) error {
	return m.Called(ctx, leadID).Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	return args.Get(0).([]entity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*entity.ClientImageSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ClientImageSession), args.Error(1)
}

func (m *MockSessionRepository) SetPdf(ctx context.Context, id, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *MockSessionRepository) MarkPdfError(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id string) (*entity.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Contract), args.Error(1)
}

func (m *MockContractRepository) SetPdf(ctx context.Context, id, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, input NotificationInput) ([]*entity.Notification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Notification), args.Error(1)
}

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishEmail(ctx context.Context, job queue.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockQueueProducer) PublishTelegramChannel(ctx context.Context, job queue.TelegramChannelJob) error {
	return m.Called(ctx, job).Error(0)
}

type MockRealtime struct {
	mock.Mock
}

func (m *MockRealtime) Publish(userID string, n *entity.Notification) {
	m.Called(userID, n)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, data []byte, folder, filename string) (*storage.File, error) {
	args := m.Called(ctx, data, folder, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.File), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) SessionReport(ctx context.Context, s *entity.ClientImageSession, lead *entity.ClientLead) (*pdf.Report, error) {
	args := m.Called(ctx, s, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Report), args.Error(1)
}

func (m *MockRenderer) ContractReport(ctx context.Context, c *entity.Contract, lead *entity.ClientLead) (*pdf.Report, error) {
	args := m.Called(ctx, c, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pdf.Report), args.Error(1)
}

type sequentialInvoices struct {
	n int
}

func (s *sequentialInvoices) Next() string {
	s.n++
	return fmt.Sprintf("INV-%04d", s.n)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(u *entity.User) (string, error) {
	args := m.Called(u)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func ptr[T any](v T) *T { return &v }

func domainCode(err error) string {
	if de, ok := AsDomainError(err); ok {
		return de.Code
	}
	return ""
}

func domainStatus(err error) int {
	if de, ok := AsDomainError(err); ok {
		return de.Status
	}
	return 0
}
