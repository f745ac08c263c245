package usecase

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

func (uc *LeadUseCase) GetLead(ctx context.Context, actor entity.Actor, id, lng string) (*LeadDetails, error) {
	lng = NormalizeLang(lng)
	lead, err := uc.findLead(ctx, id, lng)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RoleStaff && lead.UserID != nil && !lead.OwnedBy(actor.ID) {
		return nil, forbidden(CodeNotLeadOwner, lng)
	}

	files, err := uc.Leads.FilesChain(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("lead files %s: %w", lead.ID, err)
	}
	history, err := uc.Leads.History(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("lead history %s: %w", lead.ID, err)
	}

	return &LeadDetails{Lead: lead, Files: files, History: history}, nil
}

// ListLeads scopes STAFF to their own leads.
func (uc *LeadUseCase) ListLeads(ctx context.Context, actor entity.Actor, filter entity.LeadFilter) (*PageResult[entity.ClientLead], error) {
	if actor.Role == entity.RoleStaff {
		filter.UserID = actor.ID
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	leads, total, err := uc.Leads.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return &PageResult[entity.ClientLead]{Items: leads, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ListOverdueLeads returns ON_HOLD leads and active leads assigned more than
// days ago.
func (uc *LeadUseCase) ListOverdueLeads(ctx context.Context, days, page, limit int) ([]entity.ClientLead, error) {
	if days <= 0 {
		days = uc.OverdueDays
	}
	page, limit = normalizePage(page, limit)
	threshold := uc.Now().AddDate(0, 0, -days)

	leads, err := uc.Leads.ListOverdue(ctx, threshold, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list overdue leads: %w", err)
	}
	return leads, nil
}

// SendOverdueDigest tells the admins how many leads are overdue. Runs from cron.
func (uc *LeadUseCase) SendOverdueDigest(ctx context.Context) error {
	leads, err := uc.ListOverdueLeads(ctx, uc.OverdueDays, 1, 100)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d</b> overdue leads:<ul>", len(leads))
	for _, l := range leads {
		since := "-"
		if l.AssignedAt != nil {
			since = fmt.Sprintf("%d days", int(uc.Now().Sub(*l.AssignedAt)/(24*time.Hour)))
		}
		fmt.Fprintf(&b, "<li>#%d %s (%s, %s)</li>", l.Code, html.EscapeString(l.SelectedCategory), l.Status, since)
	}
	b.WriteString("</ul>")

	_, err = uc.Notifier.Notify(ctx, NotificationInput{
		Admins:       true,
		Content:      b.String(),
		Type:         entity.NotificationOverdueDigest,
		SendEmail:    true,
		EmailSubject: "Overdue leads digest",
	})
	if err != nil {
		return fmt.Errorf("overdue digest: %w", err)
	}
	log.Printf("[LEAD] overdue digest sent (%d leads)", len(leads))
	return nil
}
