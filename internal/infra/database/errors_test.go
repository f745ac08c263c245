package database

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"wrapped unique", fmt.Errorf("insert invoice: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest},
		{"not null", &pgconn.PgError{Code: "23502"}, http.StatusBadRequest},
		{"check", &pgconn.PgError{Code: "23514"}, http.StatusBadRequest},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, http.StatusBadRequest},
		{"no rows", sql.ErrNoRows, http.StatusNotFound},
		{"entity not found", fmt.Errorf("x: %w", entity.ErrLeadNotFound), http.StatusNotFound},
		{"other pg", &pgconn.PgError{Code: "40001"}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := TranslateError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("w: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
