package usecase

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

// MarkLeadAsConverted releases a lead back to the pool (ON_HOLD) or retires
// it (CONVERTED). The releasing user's managers hear about it.
func (uc *LeadUseCase) MarkLeadAsConverted(ctx context.Context, actor entity.Actor, input UpdateStatusInput) (*entity.ClientLead, error) {
	lng := NormalizeLang(input.Lng)

	next := entity.LeadStatus(input.Status)
	if next != entity.StatusOnHold && next != entity.StatusConverted {
		return nil, badRequest(CodeInvalidStatus, lng)
	}

	lead, err := uc.findLead(ctx, input.LeadID, lng)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !lead.OwnedBy(actor.ID) {
		return nil, forbidden(CodeNotLeadOwner, lng)
	}
	if !actor.IsAdmin() && lead.Status.LockedForStaff() {
		return nil, forbidden(CodeStatusLocked, lng)
	}
	if lead.Status == next {
		return lead, nil
	}

	now := uc.Now()
	err = uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := uc.Leads.TransitionStatus(ctx, lead.ID, lead.Status, next, nil)
		if err != nil {
			return err
		}
		if !ok {
			return newDomainError(CodeStatusConflict, lng, http.StatusConflict)
		}
		return uc.Leads.AppendHistory(ctx, entity.LeadStatusChange{
			LeadID: lead.ID, UserID: actor.ID, OldStatus: lead.Status, NewStatus: next, CreatedAt: now,
		})
	})
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("release lead %s: %w", lead.ID, err)
	}

	lead.Status = next
	lead.FinalizedDate = nil
	lead.UpdatedAt = now

	releasedBy := actor.ID
	if lead.UserID != nil {
		releasedBy = *lead.UserID
	}
	uc.notifyManagers(ctx, releasedBy, lead)

	return lead, nil
}

// notifyManagers walks the managerId chain of userID. With no managers the
// admins are told instead.
func (uc *LeadUseCase) notifyManagers(ctx context.Context, userID string, lead *entity.ClientLead) {
	user, err := uc.Users.FindByID(ctx, userID)
	if err != nil {
		log.Printf("[LEAD] load releasing user %s: %v", userID, err)
		return
	}

	chain := uc.managerChain(ctx, user)
	content := fmt.Sprintf("<b>%s</b> moved lead <b>#%d</b> to %s",
		html.EscapeString(user.Name), lead.Code, lead.Status)
	leadID := lead.ID

	if len(chain) == 0 {
		if _, err := uc.Notifier.Notify(ctx, NotificationInput{
			Admins: true, Content: content, Type: entity.NotificationLeadOnHold, LeadID: &leadID,
		}); err != nil {
			log.Printf("[LEAD] notify admins about %s: %v", lead.ID, err)
		}
		return
	}

	for _, managerID := range chain {
		if _, err := uc.Notifier.Notify(ctx, NotificationInput{
			UserID: managerID, Content: content, Type: entity.NotificationLeadOnHold, LeadID: &leadID,
		}); err != nil {
			log.Printf("[LEAD] notify manager %s about %s: %v", managerID, lead.ID, err)
		}
	}
}

func (uc *LeadUseCase) managerChain(ctx context.Context, user *entity.User) []string {
	var chain []string
	seen := map[string]bool{user.ID: true}

	current := user
	for current.ManagerID != nil && !seen[*current.ManagerID] {
		manager, err := uc.Users.FindByID(ctx, *current.ManagerID)
		if err != nil {
			log.Printf("[LEAD] manager %s of %s: %v", *current.ManagerID, current.ID, err)
			break
		}
		seen[manager.ID] = true
		chain = append(chain, manager.ID)
		current = manager
	}
	return chain
}
