package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

type PaymentHandler struct {
	UC *usecase.PaymentUseCase
}

func NewPaymentHandler(uc *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{UC: uc}
}

type paymentsRequest struct {
	Payments []usecase.PaymentItem `json:"payments"`
	Lng      string                `json:"lng"`
}

type noteRequest struct {
	Content string `json:"content"`
	Lng     string `json:"lng"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.UC.GetPayments(r.Context(), entity.PaymentFilter{
		Status:       entity.PaymentStatus(q.Get("status")),
		ClientLeadID: q.Get("clientLeadId"),
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page, "")
}

func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var input usecase.ProcessPaymentInput
	if !decode(w, r, &input) {
		return
	}
	input.PaymentID = chi.URLParam(r, "id")

	processed, err := h.UC.ProcessPayment(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.RecordPayment(string(processed.Status))
	respond(w, http.StatusOK, processed, usecase.Message(input.Lng, usecase.MsgPaymentProcessed))
}

func (h *PaymentHandler) MakePayments(w http.ResponseWriter, r *http.Request) {
	var req paymentsRequest
	if !decode(w, r, &req) {
		return
	}

	payments, err := h.UC.MakePayments(r.Context(), chi.URLParam(r, "id"), req.Payments, req.Lng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, payments, usecase.Message(req.Lng, usecase.MsgPaymentsCreated))
}

func (h *PaymentHandler) ExtraServices(w http.ResponseWriter, r *http.Request) {
	var req paymentsRequest
	if !decode(w, r, &req) {
		return
	}

	payments, err := h.UC.MakeExtraServicePayments(r.Context(), chi.URLParam(r, "id"), req.Payments, req.Lng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, payments, usecase.Message(req.Lng, usecase.MsgPaymentsCreated))
}

func (h *PaymentHandler) AddInvoiceNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decode(w, r, &req) {
		return
	}

	note, err := h.UC.AddInvoiceNote(r.Context(), actor, chi.URLParam(r, "id"), req.Content, req.Lng)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, note, usecase.Message(req.Lng, usecase.MsgNoteAdded))
}
