package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

type LeadHandler struct {
	UC          *usecase.LeadUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(uc *usecase.LeadUseCase, limiter *RateLimiter) *LeadHandler {
	return &LeadHandler{UC: uc, rateLimiter: limiter}
}

// Create is the public intake form.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, envelope{Message: usecase.Message(langOf(r), usecase.CodeTooManyRequests)})
		return
	}

	var input usecase.CreateLeadInput
	if !decode(w, r, &input) {
		return
	}

	out, err := h.UC.CreateLead(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.RecordLeadCreated()
	respond(w, http.StatusOK, out, out.Message)
}

func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var input usecase.AssignLeadInput
	if !decode(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.UC.AssignLead(r.Context(), actor, input)
	if err != nil {
		if de, ok := usecase.AsDomainError(err); ok {
			middleware.RecordAssignment(de.Code)
		}
		respondError(w, r, err)
		return
	}
	middleware.RecordAssignment("ASSIGNED")
	respond(w, http.StatusOK, lead, usecase.Message(input.Lng, usecase.MsgLeadAssigned))
}

func (h *LeadHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var input usecase.BulkAssignInput
	if !decode(w, r, &input) {
		return
	}

	n, err := h.UC.BulkAssignLeads(r.Context(), actor, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int64{"count": n}, usecase.Message(input.Lng, usecase.MsgLeadsBulkAssigned, n))
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateStatusInput
	if !decode(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.UC.UpdateLeadStatus(r.Context(), actor, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, lead, usecase.Message(input.Lng, usecase.MsgStatusUpdated))
}

// Hold relinquishes a lead as ON_HOLD or CONVERTED.
func (h *LeadHandler) Hold(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateStatusInput
	if !decode(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.UC.MarkLeadAsConverted(r.Context(), actor, input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, lead, usecase.Message(input.Lng, usecase.MsgLeadOnHold))
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	details, err := h.UC.GetLead(r.Context(), actor, chi.URLParam(r, "id"), langOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, details, "")
}

// List accepts status (comma separated), userId, clientId, country, from,
// to, page and limit.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := entity.LeadFilter{
		UserID:   q.Get("userId"),
		ClientID: q.Get("clientId"),
		Country:  q.Get("country"),
		From:     queryTime(r, "from"),
		To:       queryTime(r, "to"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st, ok := entity.ParseLeadStatus(strings.TrimSpace(s))
			if !ok {
				writeJSON(w, http.StatusBadRequest, envelope{Message: usecase.Message(langOf(r), usecase.CodeInvalidStatus)})
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}

	page, err := h.UC.ListLeads(r.Context(), actor, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "")
}

func (h *LeadHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	leads, err := h.UC.ListOverdueLeads(r.Context(), queryInt(r, "days"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, leads, "")
}
