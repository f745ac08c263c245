package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*entity.ClientImageSession, error) {
	query := `
		SELECT id, client_lead_id, token, COALESCE(style, ''), COALESCE(style_image_url, ''),
			materials, images, patterns, custom_colors,
			COALESCE(note, ''), COALESCE(signature_url, ''), session_status,
			COALESCE(pdf_url, ''), pdf_error, created_at, updated_at
		FROM client_image_sessions WHERE id = $1
	`

	var s entity.ClientImageSession
	var materials, images, patterns, colors []byte
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ClientLeadID, &s.Token, &s.Style, &s.StyleImageURL,
		&materials, &images, &patterns, &colors,
		&s.Note, &s.SignatureURL, &s.SessionStatus,
		&s.PdfURL, &s.PdfError, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, col := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"materials", materials, &s.Materials},
		{"images", images, &s.Images},
		{"patterns", patterns, &s.Patterns},
		{"custom_colors", colors, &s.CustomColors},
	} {
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode session %s %s: %w", id, col.name, err)
		}
	}
	return &s, nil
}

// SetPdf stores the generated document and clears a previous failure.
func (r *SessionRepository) SetPdf(ctx context.Context, id, url string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE client_image_sessions SET pdf_url = $2, pdf_error = FALSE, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *SessionRepository) MarkPdfError(ctx context.Context, id string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE client_image_sessions SET pdf_error = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}
