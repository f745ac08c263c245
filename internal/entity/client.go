package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrClientNotFound = errors.New("client not found")

// Client is the person behind one or more leads. Unique by email.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewClient(name, email, phone string) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now(),
	}
}
