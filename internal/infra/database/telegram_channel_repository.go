package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/google/uuid"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type TelegramChannelRepository struct {
	DB *sql.DB
}

func NewTelegramChannelRepository(db *sql.DB) *TelegramChannelRepository {
	return &TelegramChannelRepository{DB: db}
}

func (r *TelegramChannelRepository) ExistsForLead(ctx context.Context, leadID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM telegram_channels WHERE client_lead_id = $1)`, leadID,
	).Scan(&exists)
	return exists, err
}

// Create ignores a second row for the same lead; a redelivered job may race
// the first one.
func (r *TelegramChannelRepository) Create(ctx context.Context, ch *entity.TelegramChannel) error {
	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO telegram_channels (id, client_lead_id, chat_id, message_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ch.ID, ch.ClientLeadID, ch.ChatID, ch.MessageID, ch.CreatedAt)
	if isUniqueViolation(err) {
		log.Printf("[TELEGRAM] channel for lead %s already stored", ch.ClientLeadID)
		return nil
	}
	return err
}
