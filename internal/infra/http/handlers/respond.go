package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/database"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/http/middleware"
	"github.com/xavierca1/dreamstudio-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Data: data, Message: message})
}

// respondError answers {message} with the status carried by err. Unknown
// errors go through the database translation and are logged.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		writeJSON(w, de.Status, envelope{Message: de.Message})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Printf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: te.Message})
		return
	}

	status, message := database.TranslateError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, envelope{Message: message})
}

// decode reads a JSON body into v. It answers 400 itself and returns false
// when the body is not valid JSON.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	lng := usecase.NormalizeLang(r.URL.Query().Get("lng"))
	writeJSON(w, http.StatusBadRequest, envelope{Message: usecase.Message(lng, usecase.CodeInvalidBody)})
	return false
}

func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "يرجى تسجيل الدخول"})
	}
	return actor, ok
}

func langOf(r *http.Request) string {
	return usecase.NormalizeLang(r.URL.Query().Get("lng"))
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// queryTime accepts a date (2006-01-02) or an RFC 3339 timestamp.
func queryTime(r *http.Request, key string) *time.Time {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
