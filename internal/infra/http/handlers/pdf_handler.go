package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

type PdfHandler struct {
	UC *usecase.PdfUseCase
}

func NewPdfHandler(uc *usecase.PdfUseCase) *PdfHandler {
	return &PdfHandler{UC: uc}
}

func (h *PdfHandler) Session(w http.ResponseWriter, r *http.Request) {
	lng := langOf(r)
	session, err := h.UC.GenerateImageSessionPdf(r.Context(), chi.URLParam(r, "id"), lng)
	if err != nil {
		middleware.RecordPdf("session", "error")
		respondError(w, r, err)
		return
	}
	middleware.RecordPdf("session", "ok")
	respond(w, http.StatusOK, session, usecase.Message(lng, usecase.MsgPdfGenerated))
}

func (h *PdfHandler) Contract(w http.ResponseWriter, r *http.Request) {
	lng := langOf(r)
	contract, err := h.UC.GenerateContractPdf(r.Context(), chi.URLParam(r, "id"), lng)
	if err != nil {
		middleware.RecordPdf("contract", "error")
		respondError(w, r, err)
		return
	}
	middleware.RecordPdf("contract", "ok")
	respond(w, http.StatusOK, contract, usecase.Message(lng, usecase.MsgPdfGenerated))
}
