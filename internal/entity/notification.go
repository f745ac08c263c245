package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewLead        NotificationType = "NEW_LEAD"
	NotificationLeadAssigned   NotificationType = "LEAD_ASSIGNED"
	NotificationLeadOnHold     NotificationType = "LEAD_ON_HOLD"
	NotificationStatusChanged  NotificationType = "LEAD_STATUS_CHANGED"
	NotificationPaymentUpdate  NotificationType = "PAYMENT_UPDATE"
	NotificationSessionPdf     NotificationType = "SESSION_PDF"
	NotificationOverdueDigest  NotificationType = "OVERDUE_DIGEST"
	NotificationContractSigned NotificationType = "CONTRACT_PDF"
)

type Notification struct {
	ID           string           `json:"id"`
	UserID       *string          `json:"userId,omitempty"`
	Content      string           `json:"content"`
	Type         NotificationType `json:"type"`
	IsRead       bool             `json:"isRead"`
	ClientLeadID *string          `json:"clientLeadId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

func NewNotification(userID string, content string, typ NotificationType, leadID *string) *Notification {
	return &Notification{
		ID:           uuid.New().String(),
		UserID:       &userID,
		Content:      content,
		Type:         typ,
		ClientLeadID: leadID,
		CreatedAt:    time.Now(),
	}
}
