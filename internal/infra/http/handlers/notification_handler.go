package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

const keepAliveInterval = 25 * time.Second

// Subscriber is the realtime side of the notification fan-out.
type Subscriber interface {
	Subscribe(userID string) (<-chan *entity.Notification, func())
}

type NotificationHandler struct {
	UC  *usecase.NotificationUseCase
	Hub Subscriber
}

func NewNotificationHandler(uc *usecase.NotificationUseCase, hub Subscriber) *NotificationHandler {
	return &NotificationHandler{UC: uc, Hub: hub}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	unread := r.URL.Query().Get("unread") == "true"
	items, err := h.UC.ListNotifications(r.Context(), actor.ID, unread, queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, items, "")
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	lng := langOf(r)
	if err := h.UC.MarkNotificationRead(r.Context(), actor.ID, chi.URLParam(r, "id"), lng); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil, usecase.Message(lng, usecase.MsgOK))
}

// Stream pushes the caller's notifications as server-sent events until the
// client disconnects.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, leave := h.Hub.Subscribe(actor.ID)
	defer leave()

	w.Header().Set("Content-Type", sse.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := sse.Encode(w, sse.Event{Event: "ready", Data: map[string]string{"userId": actor.ID}}); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, open := <-events:
			if !open {
				return
			}
			if err := sse.Encode(w, sse.Event{Id: n.ID, Event: "notification", Data: n}); err != nil {
				log.Printf("[SSE] write to %s: %v", actor.ID, err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if err := sse.Encode(w, sse.Event{Event: "ping", Data: time.Now().Unix()}); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
