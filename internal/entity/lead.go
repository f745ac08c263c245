package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrLeadNotFound = errors.New("lead not found")

type LeadStatus string

const (
	StatusNew             LeadStatus = "NEW"
	StatusInProgress      LeadStatus = "IN_PROGRESS"
	StatusInterested      LeadStatus = "INTERESTED"
	StatusNeedsIdentified LeadStatus = "NEEDS_IDENTIFIED"
	StatusNegotiating     LeadStatus = "NEGOTIATING"
	StatusRejected        LeadStatus = "REJECTED"
	StatusFinalized       LeadStatus = "FINALIZED"
	StatusConverted       LeadStatus = "CONVERTED"
	StatusOnHold          LeadStatus = "ON_HOLD"
	StatusArchived        LeadStatus = "ARCHIVED"
)

var AllLeadStatuses = []LeadStatus{
	StatusNew, StatusInProgress, StatusInterested, StatusNeedsIdentified, StatusNegotiating,
	StatusRejected, StatusFinalized, StatusConverted, StatusOnHold, StatusArchived,
}

// InactiveStatuses do not count towards a user's active lead quota.
var InactiveStatuses = []LeadStatus{StatusFinalized, StatusRejected, StatusOnHold, StatusConverted}

// ClaimableStatuses are the statuses a non-admin may claim a lead from.
var ClaimableStatuses = []LeadStatus{StatusNew, StatusOnHold}

func ParseLeadStatus(s string) (LeadStatus, bool) {
	for _, st := range AllLeadStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s LeadStatus) Active() bool {
	for _, st := range InactiveStatuses {
		if s == st {
			return false
		}
	}
	return true
}

// LockedForStaff reports whether only an admin may move a lead out of s.
func (s LeadStatus) LockedForStaff() bool {
	switch s {
	case StatusFinalized, StatusRejected, StatusArchived, StatusOnHold:
		return true
	}
	return false
}

type LeadType string

const (
	LeadTypeNormal    LeadType = "NORMAL"
	LeadTypeConverted LeadType = "CONVERTED"
)

type ClientLead struct {
	ID                   string     `json:"id"`
	ClientID             string     `json:"clientId"`
	UserID               *string    `json:"userId,omitempty"`
	Status               LeadStatus `json:"status"`
	SelectedCategory     string     `json:"selectedCategory"`
	Item                 string     `json:"item,omitempty"`
	Description          string     `json:"description,omitempty"`
	PriceOption          string     `json:"priceOption,omitempty"`
	Price                *float64   `json:"price,omitempty"`
	AveragePrice         *float64   `json:"averagePrice,omitempty"`
	PriceWithOutDiscount *float64   `json:"priceWithOutDiscount,omitempty"`
	Discount             *float64   `json:"discount,omitempty"`
	Country              string     `json:"country,omitempty"`
	Emirate              string     `json:"emirate,omitempty"`
	LeadType             LeadType   `json:"leadType"`
	PreviousLeadID       *string    `json:"previousLeadId,omitempty"`
	AssignedAt           *time.Time `json:"assignedAt,omitempty"`
	FinalizedDate        *time.Time `json:"finalizedDate,omitempty"`
	Code                 int        `json:"code"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`

	Client *Client `json:"client,omitempty"`
}

func NewClientLead(clientID, category string) *ClientLead {
	now := time.Now()
	return &ClientLead{
		ID:               uuid.New().String(),
		ClientID:         clientID,
		Status:           StatusNew,
		SelectedCategory: category,
		LeadType:         LeadTypeNormal,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (l *ClientLead) OwnedBy(userID string) bool {
	return l.UserID != nil && *l.UserID == userID
}

// Shadow copies the commercial fields of l into a fresh IN_PROGRESS lead of
// type CONVERTED that points back at l. The shadow belongs to userID, the
// new assignee, so the claim counts toward their quota; the previous owner
// stays recorded on l, whose status moves to CONVERTED. The files, notes and
// reminders stay on l.
func (l *ClientLead) Shadow(userID string, at time.Time) *ClientLead {
	prev := l.ID
	return &ClientLead{
		ID:                   uuid.New().String(),
		ClientID:             l.ClientID,
		UserID:               &userID,
		Status:               StatusInProgress,
		SelectedCategory:     l.SelectedCategory,
		Item:                 l.Item,
		Description:          l.Description,
		PriceOption:          l.PriceOption,
		Price:                l.Price,
		AveragePrice:         l.AveragePrice,
		PriceWithOutDiscount: l.PriceWithOutDiscount,
		Discount:             l.Discount,
		Country:              l.Country,
		Emirate:              l.Emirate,
		LeadType:             LeadTypeConverted,
		PreviousLeadID:       &prev,
		AssignedAt:           &at,
		CreatedAt:            at,
		UpdatedAt:            at,
	}
}

// LeadFilter is shared by every lead listing query.
type LeadFilter struct {
	Statuses []LeadStatus
	UserID   string
	ClientID string
	Country  string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

type LeadStatusChange struct {
	LeadID    string     `json:"leadId"`
	UserID    string     `json:"userId"`
	OldStatus LeadStatus `json:"oldStatus"`
	NewStatus LeadStatus `json:"newStatus"`
	CreatedAt time.Time  `json:"createdAt"`
}

// LeadFile is an attachment kept on the lead it was uploaded to.
type LeadFile struct {
	ID           string    `json:"id"`
	ClientLeadID string    `json:"clientLeadId"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}

type TelegramChannel struct {
	ID           string    `json:"id"`
	ClientLeadID string    `json:"clientLeadId"`
	ChatID       int64     `json:"chatId"`
	MessageID    int       `json:"messageId"`
	CreatedAt    time.Time `json:"createdAt"`
}
