package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

// AssignLead hands leadID to input.UserID. The preconditions run inside a
// transaction that holds the claiming user's row, and the claim itself is a
// conditional update, so two concurrent claims cannot both win.
func (uc *LeadUseCase) AssignLead(ctx context.Context, actor entity.Actor, input AssignLeadInput) (*entity.ClientLead, error) {
	lng := NormalizeLang(input.Lng)
	userID := input.UserID
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden(CodeForbidden, lng)
	}

	now := uc.Now()
	var result *entity.ClientLead

	err := uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := uc.Users.LockByID(ctx, userID)
		if errors.Is(err, entity.ErrUserNotFound) {
			return notFound(CodeUserNotFound, lng)
		}
		if err != nil {
			return err
		}

		lead, err := uc.Leads.FindByID(ctx, input.LeadID)
		if errors.Is(err, entity.ErrLeadNotFound) {
			return notFound(CodeLeadNotFound, lng)
		}
		if err != nil {
			return err
		}

		if !actor.IsAdmin() && !isClaimable(lead.Status) {
			return newDomainError(CodeLeadAlreadyAssigned, lng, http.StatusConflict)
		}
		if !user.CountryAllowed(lead.Country) {
			return forbidden(CodeCountryNotAllowed, lng)
		}

		active, err := uc.Leads.CountActiveByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if active >= user.LeadQuota() {
			return newDomainError(CodeMaxLeadsReached, lng, http.StatusForbidden, user.LeadQuota())
		}

		if !actor.IsAdmin() {
			today, err := uc.Leads.CountAssignedSince(ctx, user.ID, startOfDay(now))
			if err != nil {
				return err
			}
			if today >= user.DailyLeadQuota() {
				return newDomainError(CodeDailyLimitReached, lng, http.StatusForbidden, user.DailyLeadQuota())
			}
		}

		if needsShadow(actor, lead, user.ID) {
			ok, err := uc.Leads.TransitionStatus(ctx, lead.ID, lead.Status, entity.StatusConverted, nil)
			if err != nil {
				return err
			}
			if !ok {
				return newDomainError(CodeLeadAlreadyAssigned, lng, http.StatusConflict)
			}

			shadow := lead.Shadow(user.ID, now)
			if err := uc.Leads.Insert(ctx, shadow); err != nil {
				return err
			}
			if err := uc.Leads.AppendHistory(ctx, entity.LeadStatusChange{
				LeadID: lead.ID, UserID: actor.ID, OldStatus: lead.Status, NewStatus: entity.StatusConverted, CreatedAt: now,
			}); err != nil {
				return err
			}
			shadow.Client = lead.Client
			result = shadow
			return nil
		}

		from := entity.ClaimableStatuses
		if actor.IsAdmin() {
			from = []entity.LeadStatus{lead.Status}
		}
		ok, err := uc.Leads.Claim(ctx, lead.ID, user.ID, from, now)
		if err != nil {
			return err
		}
		if !ok {
			return newDomainError(CodeLeadAlreadyAssigned, lng, http.StatusConflict)
		}
		if err := uc.Leads.AppendHistory(ctx, entity.LeadStatusChange{
			LeadID: lead.ID, UserID: actor.ID, OldStatus: lead.Status, NewStatus: entity.StatusInProgress, CreatedAt: now,
		}); err != nil {
			return err
		}

		lead.UserID = &user.ID
		lead.Status = entity.StatusInProgress
		lead.AssignedAt = &now
		lead.UpdatedAt = now
		result = lead
		return nil
	})
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("assign lead %s: %w", input.LeadID, err)
	}

	log.Printf("[LEAD] lead %s assigned to %s by %s (type %s)", result.ID, userID, actor.ID, result.LeadType)
	uc.notifyAssigned(ctx, userID, result)

	return result, nil
}

// BulkAssignLeads moves every lead in ids to userID with one statement.
func (uc *LeadUseCase) BulkAssignLeads(ctx context.Context, actor entity.Actor, input BulkAssignInput) (int64, error) {
	lng := NormalizeLang(input.Lng)
	if !actor.IsAdmin() {
		return 0, forbidden(CodeForbidden, lng)
	}
	if len(input.LeadIDs) == 0 {
		return 0, badRequest(CodeValidation, lng, "leadIds is required")
	}

	if _, err := uc.Users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return 0, notFound(CodeUserNotFound, lng)
		}
		return 0, fmt.Errorf("bulk assign: %w", err)
	}

	n, err := uc.Leads.BulkAssign(ctx, input.LeadIDs, input.UserID, uc.Now())
	if err != nil {
		return 0, fmt.Errorf("bulk assign: %w", err)
	}

	if n > 0 {
		if _, err := uc.Notifier.Notify(ctx, NotificationInput{
			UserID:  input.UserID,
			Content: fmt.Sprintf("<b>%d</b> leads were assigned to you", n),
			Type:    entity.NotificationLeadAssigned,
		}); err != nil {
			log.Printf("[LEAD] bulk assign notification: %v", err)
		}
	}
	return n, nil
}

func (uc *LeadUseCase) notifyAssigned(ctx context.Context, userID string, lead *entity.ClientLead) {
	name := ""
	if lead.Client != nil {
		name = lead.Client.Name
	}
	leadID := lead.ID
	if _, err := uc.Notifier.Notify(ctx, NotificationInput{
		UserID:  userID,
		Content: fmt.Sprintf("Lead <b>#%d</b> %s has been assigned to you", lead.Code, html.EscapeString(name)),
		Type:    entity.NotificationLeadAssigned,
		LeadID:  &leadID,
	}); err != nil {
		log.Printf("[LEAD] assignment notification for %s: %v", lead.ID, err)
	}
}

func isClaimable(s entity.LeadStatus) bool {
	for _, st := range entity.ClaimableStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// needsShadow: ON_HOLD leads, and admin reassignments of owned leads, are
// claimed through a fresh CONVERTED copy so the original keeps its history.
func needsShadow(actor entity.Actor, lead *entity.ClientLead, userID string) bool {
	if lead.Status == entity.StatusOnHold {
		return true
	}
	return actor.IsAdmin() && lead.UserID != nil && *lead.UserID != userID
}
