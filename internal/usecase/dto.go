package usecase

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type CreateLeadInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	Item        string `json:"item"`
	Description string `json:"description"`
	PriceOption string `json:"priceOption"`
	Country     string `json:"country"`
	Emirate     string `json:"emirate"`
	Lng         string `json:"lng"`
}

type CreateLeadOutput struct {
	Lead    *entity.ClientLead `json:"lead"`
	Client  *entity.Client     `json:"client"`
	Message string             `json:"-"`
}

type AssignLeadInput struct {
	LeadID string `json:"-"`
	UserID string `json:"userId"`
	Lng    string `json:"lng"`
}

type BulkAssignInput struct {
	LeadIDs []string `json:"leadIds"`
	UserID  string   `json:"userId"`
	Lng     string   `json:"lng"`
}

type UpdateStatusInput struct {
	LeadID string `json:"-"`
	Status string `json:"status"`
	Lng    string `json:"lng"`
}

type LeadDetails struct {
	Lead    *entity.ClientLead        `json:"lead"`
	Files   []entity.LeadFile         `json:"files"`
	History []entity.LeadStatusChange `json:"history"`
}

type PaymentItem struct {
	Amount        decimal.Decimal `json:"amount"`
	DueDate       *time.Time      `json:"dueDate"`
	PaymentReason string          `json:"paymentReason"`
	Note          string          `json:"note"`
}

type ProcessPaymentInput struct {
	PaymentID  string          `json:"-"`
	Amount     decimal.Decimal `json:"amount"`
	IssuedDate *time.Time      `json:"issuedDate"`
	Lng        string          `json:"lng"`
}

type NotificationInput struct {
	UserID  string
	Admins  bool
	Roles   []entity.Role
	Content string
	Type    entity.NotificationType
	LeadID  *string

	SendEmail    bool
	EmailSubject string
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Lng      string `json:"lng"`
}

type LoginOutput struct {
	Token string       `json:"-"`
	User  *entity.User `json:"user"`
}

type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
