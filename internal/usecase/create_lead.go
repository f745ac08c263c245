package usecase

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

// CreateLead is the public intake. One lead per client per calendar day.
func (uc *LeadUseCase) CreateLead(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	lng := NormalizeLang(input.Lng)

	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, badRequest(CodeValidation, lng, joinValidationErrors(errs))
	}

	client := entity.NewClient(input.Name, input.Email, input.Phone)

	lead := entity.NewClientLead("", strings.TrimSpace(input.Category))
	lead.Item = strings.TrimSpace(input.Item)
	lead.Description = strings.TrimSpace(input.Description)
	lead.PriceOption = strings.TrimSpace(input.PriceOption)
	lead.Country = strings.TrimSpace(input.Country)
	lead.Emirate = strings.TrimSpace(input.Emirate)
	if avg, ok := ParsePriceOption(lead.PriceOption); ok {
		lead.AveragePrice = &avg
	}

	now := uc.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	err := uc.Tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := uc.Clients.UpsertByEmail(ctx, client); err != nil {
			return err
		}
		if err := uc.Clients.Lock(ctx, client.ID); err != nil {
			return err
		}
		lead.ClientID = client.ID

		created, err := uc.Leads.CreateIfNoneSince(ctx, lead, startOfDay(now))
		if err != nil {
			return err
		}
		if !created {
			// rolls back the client upsert as well
			return newDomainError(CodeLeadDuplicateToday, lng, http.StatusUnprocessableEntity)
		}
		return nil
	})
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create lead: %w", err)
	}
	lead.Client = client

	log.Printf("[LEAD] new lead %s (code %d) for client %s", lead.ID, lead.Code, client.Email)

	leadID := lead.ID
	if _, err := uc.Notifier.Notify(ctx, NotificationInput{
		Admins: true,
		Content: fmt.Sprintf("New lead <b>#%d</b> from <b>%s</b> in %s",
			lead.Code, html.EscapeString(client.Name), html.EscapeString(lead.SelectedCategory)),
		Type:   entity.NotificationNewLead,
		LeadID: &leadID,
	}); err != nil {
		log.Printf("[LEAD] notify admins for lead %s: %v", lead.ID, err)
	}

	return &CreateLeadOutput{
		Lead:    lead,
		Client:  client,
		Message: Message(lng, MsgLeadCreated),
	}, nil
}
