package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/storage"
)

const pdfFolder = "uploads"

type PdfUseCase struct {
	Sessions  SessionRepositoryInterface
	Contracts ContractRepositoryInterface
	Leads     LeadRepositoryInterface
	Renderer  ReportRenderer
	Storage   FileStorage
	Queue     QueueProducerInterface
	Notifier  Notifier
}

func NewPdfUseCase(
	sessions SessionRepositoryInterface,
	contracts ContractRepositoryInterface,
	leads LeadRepositoryInterface,
	renderer ReportRenderer,
	files FileStorage,
	queue QueueProducerInterface,
	notifier Notifier,
) *PdfUseCase {
	return &PdfUseCase{
		Sessions:  sessions,
		Contracts: contracts,
		Leads:     leads,
		Renderer:  renderer,
		Storage:   files,
		Queue:     queue,
		Notifier:  notifier,
	}
}

// GenerateImageSessionPdf renders the session summary, stores it under
// uploads/ and tells the client and the assigned staff. Any failure flags
// the session with pdfError and is returned to the caller.
func (uc *PdfUseCase) GenerateImageSessionPdf(ctx context.Context, sessionID, lng string) (*entity.ClientImageSession, error) {
	lng = NormalizeLang(lng)

	session, err := uc.Sessions.FindByID(ctx, sessionID)
	if errors.Is(err, entity.ErrSessionNotFound) {
		return nil, notFound(CodeSessionNotFound, lng)
	}
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", sessionID, err)
	}

	lead, err := uc.Leads.FindByID(ctx, session.ClientLeadID)
	if err != nil {
		return nil, uc.failSession(ctx, session, lng, fmt.Errorf("find lead %s: %w", session.ClientLeadID, err))
	}

	report, err := uc.Renderer.SessionReport(ctx, session, lead)
	if err != nil {
		return nil, uc.failSession(ctx, session, lng, err)
	}
	if len(report.FallbackImages) > 0 {
		log.Printf("[PDF] session %s: %d images replaced by links", session.ID, len(report.FallbackImages))
	}

	url, err := uc.store(ctx, report.Bytes, fmt.Sprintf("session-%s.pdf", session.ID), func(ctx context.Context, url string) error {
		return uc.Sessions.SetPdf(ctx, session.ID, url)
	})
	if err != nil {
		return nil, uc.failSession(ctx, session, lng, err)
	}
	session.PdfURL = url
	session.PdfError = false

	log.Printf("[PDF] session %s rendered (%d pages) -> %s", session.ID, report.Pages, url)

	if lead.Client != nil && lead.Client.Email != "" {
		uc.email(ctx, queue.EmailJob{
			To:       lead.Client.Email,
			Subject:  "Your Dream Studio design session",
			Template: queue.TemplateSessionPdf,
			Data: map[string]string{
				"Name":   lead.Client.Name,
				"PdfURL": url,
			},
		})
	}
	if lead.UserID != nil {
		leadID := lead.ID
		if _, err := uc.Notifier.Notify(ctx, NotificationInput{
			UserID:  *lead.UserID,
			Content: fmt.Sprintf(`Session summary for lead <b>#%d</b> is ready: <a href="%s">PDF</a>`, lead.Code, url),
			Type:    entity.NotificationSessionPdf,
			LeadID:  &leadID,
		}); err != nil {
			log.Printf("[PDF] notify staff for session %s: %v", session.ID, err)
		}
	}

	return session, nil
}

func (uc *PdfUseCase) GenerateContractPdf(ctx context.Context, contractID, lng string) (*entity.Contract, error) {
	lng = NormalizeLang(lng)

	contract, err := uc.Contracts.FindByID(ctx, contractID)
	if errors.Is(err, entity.ErrContractNotFound) {
		return nil, notFound(CodeContractNotFound, lng)
	}
	if err != nil {
		return nil, fmt.Errorf("find contract %s: %w", contractID, err)
	}

	lead, err := uc.Leads.FindByID(ctx, contract.ClientLeadID)
	if err != nil {
		return nil, fmt.Errorf("find lead %s: %w", contract.ClientLeadID, err)
	}

	report, err := uc.Renderer.ContractReport(ctx, contract, lead)
	if err != nil {
		return nil, &TechnicalError{Code: CodePdfFailed, Message: Message(lng, CodePdfFailed), Err: err}
	}

	url, err := uc.store(ctx, report.Bytes, fmt.Sprintf("contract-%s.pdf", contract.ID), func(ctx context.Context, url string) error {
		return uc.Contracts.SetPdf(ctx, contract.ID, url)
	})
	if err != nil {
		return nil, &TechnicalError{Code: CodePdfFailed, Message: Message(lng, CodePdfFailed), Err: err}
	}
	contract.PdfURL = url

	log.Printf("[PDF] contract %s rendered (%d pages) -> %s", contract.ID, report.Pages, url)

	if lead.Client != nil && lead.Client.Email != "" {
		uc.email(ctx, queue.EmailJob{
			To:       lead.Client.Email,
			Subject:  "Your Dream Studio contract",
			Template: queue.TemplateContractPdf,
			Data: map[string]string{
				"Name":   lead.Client.Name,
				"Title":  contract.Title,
				"PdfURL": url,
			},
		})
	}
	return contract, nil
}

// store uploads data and persists the url. A failed persist deletes the upload.
func (uc *PdfUseCase) store(ctx context.Context, data []byte, filename string, persist func(context.Context, string) error) (string, error) {
	var uploaded *storage.File

	saga := NewSaga()
	saga.AddStep("upload_pdf",
		func(ctx context.Context) error {
			f, err := uc.Storage.Upload(ctx, data, pdfFolder, filename)
			if err != nil {
				return err
			}
			uploaded = f
			return nil
		},
		func(ctx context.Context) error {
			return uc.Storage.Delete(ctx, uploaded.PublicID)
		},
	)
	saga.AddStep("persist_pdf_url",
		func(ctx context.Context) error {
			return persist(ctx, uploaded.URL)
		},
		nil,
	)

	if err := saga.Execute(ctx); err != nil {
		return "", err
	}
	return uploaded.URL, nil
}

func (uc *PdfUseCase) failSession(ctx context.Context, s *entity.ClientImageSession, lng string, cause error) error {
	log.Printf("[PDF] session %s failed: %v", s.ID, cause)
	if err := uc.Sessions.MarkPdfError(ctx, s.ID); err != nil {
		log.Printf("[PDF] flag session %s: %v", s.ID, err)
	}
	s.PdfError = true
	return &TechnicalError{Code: CodePdfFailed, Message: Message(lng, CodePdfFailed), Err: cause}
}

func (uc *PdfUseCase) email(ctx context.Context, job queue.EmailJob) {
	if uc.Queue == nil {
		return
	}
	if err := uc.Queue.PublishEmail(ctx, job); err != nil {
		log.Printf("[PDF] enqueue email to %s: %v", job.To, err)
	}
}
