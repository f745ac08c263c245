package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

func (uc *LeadUseCase) UpdateLeadStatus(ctx context.Context, actor entity.Actor, input UpdateStatusInput) (*entity.ClientLead, error) {
	lng := NormalizeLang(input.Lng)

	next, ok := entity.ParseLeadStatus(input.Status)
	if !ok {
		return nil, badRequest(CodeInvalidStatus, lng)
	}

	lead, err := uc.findLead(ctx, input.LeadID, lng)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if lead.Status.LockedForStaff() {
			return nil, forbidden(CodeStatusLocked, lng)
		}
		if !lead.OwnedBy(actor.ID) {
			return nil, forbidden(CodeNotLeadOwner, lng)
		}
	}

	if lead.Status == next {
		return lead, nil
	}

	now := uc.Now()
	var finalized *time.Time
	if next == entity.StatusFinalized {
		finalized = &now
	}
	revert := lead.Status == entity.StatusFinalized

	err = uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := uc.Leads.TransitionStatus(ctx, lead.ID, lead.Status, next, finalized)
		if err != nil {
			return err
		}
		if !ok {
			return newDomainError(CodeStatusConflict, lng, http.StatusConflict)
		}

		if revert {
			if err := uc.Payments.DeleteLedgerForLead(ctx, lead.ID); err != nil {
				return err
			}
		}

		return uc.Leads.AppendHistory(ctx, entity.LeadStatusChange{
			LeadID: lead.ID, UserID: actor.ID, OldStatus: lead.Status, NewStatus: next, CreatedAt: now,
		})
	})
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update lead status %s: %w", lead.ID, err)
	}

	previous := lead.Status
	lead.Status = next
	lead.FinalizedDate = finalized
	lead.UpdatedAt = now

	if revert {
		log.Printf("[LEAD] lead %s reverted from FINALIZED by %s, ledger cleared", lead.ID, actor.ID)
	}

	if next == entity.StatusFinalized {
		uc.enqueueTelegramChannel(ctx, lead)
	}

	if lead.UserID != nil && *lead.UserID != actor.ID {
		leadID := lead.ID
		if _, err := uc.Notifier.Notify(ctx, NotificationInput{
			UserID:  *lead.UserID,
			Content: fmt.Sprintf("Lead <b>#%d</b> moved from %s to %s", lead.Code, previous, next),
			Type:    entity.NotificationStatusChanged,
			LeadID:  &leadID,
		}); err != nil {
			log.Printf("[LEAD] status notification for %s: %v", lead.ID, err)
		}
	}

	return lead, nil
}

func (uc *LeadUseCase) enqueueTelegramChannel(ctx context.Context, lead *entity.ClientLead) {
	if uc.Queue == nil {
		return
	}
	job := queue.TelegramChannelJob{
		LeadID:   lead.ID,
		Code:     lead.Code,
		Category: lead.SelectedCategory,
		Country:  lead.Country,
	}
	if lead.Client != nil {
		job.ClientName = lead.Client.Name
		job.ClientPhone = lead.Client.Phone
	}
	if err := uc.Queue.PublishTelegramChannel(ctx, job); err != nil {
		log.Printf("[LEAD] enqueue telegram channel for %s: %v", lead.ID, err)
	}
}

func (uc *LeadUseCase) findLead(ctx context.Context, id, lng string) (*entity.ClientLead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, notFound(CodeLeadNotFound, lng)
	}
	if err != nil {
		return nil, fmt.Errorf("find lead %s: %w", id, err)
	}
	return lead, nil
}
