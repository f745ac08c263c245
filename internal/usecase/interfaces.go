package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/storage"
	"github.com/xavierca1/dreamstudio-crm/internal/pdf"
)

// TxManager runs fn inside a database transaction carried by ctx. Repositories
// called with that ctx join the transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ClientRepositoryInterface interface {
	UpsertByEmail(ctx context.Context, c *entity.Client) error
	Lock(ctx context.Context, id string) error
}

type LeadRepositoryInterface interface {
	// CreateIfNoneSince inserts lead with the next per-client code unless the
	// client already has a lead created at or after since.
	CreateIfNoneSince(ctx context.Context, lead *entity.ClientLead, since time.Time) (bool, error)
	FindByID(ctx context.Context, id string) (*entity.ClientLead, error)
	Insert(ctx context.Context, lead *entity.ClientLead) error
	// Claim sets owner and IN_PROGRESS only while the lead is in one of from.
	Claim(ctx context.Context, id, userID string, from []entity.LeadStatus, at time.Time) (bool, error)
	BulkAssign(ctx context.Context, ids []string, userID string, at time.Time) (int64, error)
	TransitionStatus(ctx context.Context, id string, from, to entity.LeadStatus, finalizedDate *time.Time) (bool, error)
	CountActiveByUser(ctx context.Context, userID string) (int, error)
	CountAssignedSince(ctx context.Context, userID string, since time.Time) (int, error)
	List(ctx context.Context, filter entity.LeadFilter) ([]entity.ClientLead, int, error)
	ListOverdue(ctx context.Context, assignedBefore time.Time, page, limit int) ([]entity.ClientLead, error)
	AppendHistory(ctx context.Context, change entity.LeadStatusChange) error
	History(ctx context.Context, leadID string) ([]entity.LeadStatusChange, error)
	FilesChain(ctx context.Context, leadID string) ([]entity.LeadFile, error)
}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	LockByID(ctx context.Context, id string) (*entity.User, error)
	ListActiveByRoles(ctx context.Context, roles []entity.Role) ([]entity.User, error)
}

type PaymentRepositoryInterface interface {
	SweepOverdue(ctx context.Context, today time.Time) (int64, error)
	List(ctx context.Context, filter entity.PaymentFilter) ([]entity.Payment, int, error)
	FindByID(ctx context.Context, id string) (*entity.Payment, error)
	// ApplyAmount adds amount to amountPaid only while the pending amount
	// still covers it.
	ApplyAmount(ctx context.Context, id string, amount decimal.Decimal) (*entity.Payment, bool, error)
	CreateInvoice(ctx context.Context, inv *entity.Invoice) error
	FindInvoice(ctx context.Context, id string) (*entity.Invoice, error)
	CreateMany(ctx context.Context, payments []*entity.Payment) error
	CreateExtraService(ctx context.Context, es *entity.ExtraService) error
	AddNote(ctx context.Context, note *entity.Note) error
	DeleteLedgerForLead(ctx context.Context, leadID string) error
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error)
	MarkRead(ctx context.Context, userID, id string) (bool, error)
}

type SessionRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.ClientImageSession, error)
	SetPdf(ctx context.Context, id, url string) error
	MarkPdfError(ctx context.Context, id string) error
}

type ContractRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.Contract, error)
	SetPdf(ctx context.Context, id, url string) error
}

type RealtimePublisher interface {
	Publish(userID string, n *entity.Notification)
}

type QueueProducerInterface interface {
	PublishEmail(ctx context.Context, job queue.EmailJob) error
	PublishTelegramChannel(ctx context.Context, job queue.TelegramChannelJob) error
}

type FileStorage interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*storage.File, error)
	Delete(ctx context.Context, publicID string) error
}

type ReportRenderer interface {
	SessionReport(ctx context.Context, s *entity.ClientImageSession, lead *entity.ClientLead) (*pdf.Report, error)
	ContractReport(ctx context.Context, c *entity.Contract, lead *entity.ClientLead) (*pdf.Report, error)
}

type InvoiceNumberGenerator interface {
	Next() string
}

type TokenIssuer interface {
	Issue(u *entity.User) (string, error)
}

// Notifier is the fan-out entry point used by the other use cases.
type Notifier interface {
	Notify(ctx context.Context, input NotificationInput) ([]*entity.Notification, error)
}
