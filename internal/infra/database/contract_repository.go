package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type ContractRepository struct {
	DB *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{DB: db}
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*entity.Contract, error) {
	query := `
		SELECT id, client_lead_id, title, clauses, first_party_name, second_party_name,
			COALESCE(stamp_url, ''), COALESCE(first_signature_url, ''), COALESCE(second_signature_url, ''),
			COALESCE(pdf_url, ''), created_at
		FROM contracts WHERE id = $1
	`

	var c entity.Contract
	var clauses []byte
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.ClientLeadID, &c.Title, &clauses, &c.FirstPartyName, &c.SecondPartyName,
		&c.StampURL, &c.FirstSignatureURL, &c.SecondSignatureURL, &c.PdfURL, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(clauses, &c.Clauses); err != nil {
		return nil, fmt.Errorf("decode contract %s clauses: %w", id, err)
	}
	return &c, nil
}

func (r *ContractRepository) SetPdf(ctx context.Context, id, url string) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx, `UPDATE contracts SET pdf_url = $2 WHERE id = $1`, id, url)
	return err
}
