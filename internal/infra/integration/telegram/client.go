package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client opens the lead thread in the studio's Telegram group. The first
// message of the thread is the channel record kept per lead.
type Client struct {
	bot    BotSender
	chatID int64
}

func NewClient(token string, chatID int64) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	return NewClientWithBot(bot, chatID), nil
}

func NewClientWithBot(bot BotSender, chatID int64) *Client {
	return &Client{bot: bot, chatID: chatID}
}

func (c *Client) AnnounceLead(ctx context.Context, job queue.TelegramChannelJob) (int64, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	msg := tgbotapi.NewMessage(c.chatID, leadMessage(job))
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("telegram send: %w", err)
	}
	return sent.Chat.ID, sent.MessageID, nil
}

func leadMessage(job queue.TelegramChannelJob) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Lead #%d finalized</b>\n", job.Code)
	if job.ClientName != "" {
		fmt.Fprintf(&b, "Client: %s\n", html.EscapeString(job.ClientName))
	}
	if job.ClientPhone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", html.EscapeString(job.ClientPhone))
	}
	if job.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", html.EscapeString(job.Category))
	}
	if job.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", html.EscapeString(job.Country))
	}
	fmt.Fprintf(&b, "ID: <code>%s</code>", job.LeadID)
	return b.String()
}
