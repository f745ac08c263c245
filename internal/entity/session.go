package entity

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("image session not found")
	ErrContractNotFound = errors.New("contract not found")
)

type SessionStatus string

const (
	SessionDraft     SessionStatus = "DRAFT"
	SessionSubmitted SessionStatus = "SUBMITTED"
	SessionApproved  SessionStatus = "APPROVED"
)

type SessionImage struct {
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

type Material struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

type CustomColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

type ClientImageSession struct {
	ID            string         `json:"id"`
	ClientLeadID  string         `json:"clientLeadId"`
	Token         string         `json:"token"`
	Style         string         `json:"style"`
	StyleImageURL string         `json:"styleImageUrl,omitempty"`
	Materials     []Material     `json:"materials"`
	Images        []SessionImage `json:"images"`
	Patterns      []SessionImage `json:"patterns"`
	CustomColors  []CustomColor  `json:"customColors"`
	Note          string         `json:"note,omitempty"`
	SignatureURL  string         `json:"signatureUrl,omitempty"`
	SessionStatus SessionStatus  `json:"sessionStatus"`
	PdfURL        string         `json:"pdfUrl,omitempty"`
	PdfError      bool           `json:"pdfError"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type Contract struct {
	ID                 string    `json:"id"`
	ClientLeadID       string    `json:"clientLeadId"`
	Title              string    `json:"title"`
	Clauses            []string  `json:"clauses"`
	FirstPartyName     string    `json:"firstPartyName"`
	SecondPartyName    string    `json:"secondPartyName"`
	StampURL           string    `json:"stampUrl,omitempty"`
	FirstSignatureURL  string    `json:"firstSignatureUrl,omitempty"`
	SecondSignatureURL string    `json:"secondSignatureUrl,omitempty"`
	PdfURL             string    `json:"pdfUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}
