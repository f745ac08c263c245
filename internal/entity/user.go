package entity

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type Role string

const (
	RoleSuperAdmin       Role = "SUPER_ADMIN"
	RoleAdmin            Role = "ADMIN"
	RoleStaff            Role = "STAFF"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleContactInitiator Role = "CONTACT_INITIATOR"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

const (
	AccountActive  = "ACTIVE"
	AccountBlocked = "BLOCKED"
)

const (
	DefaultMaxLeadsCount      = 50
	DefaultMaxLeadCountPerDay = 5
)

type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	Role                Role      `json:"role"`
	IsActive            bool      `json:"isActive"`
	AccountStatus       string    `json:"accountStatus"`
	ManagerID           *string   `json:"managerId,omitempty"`
	MaxLeadsCounts      *int      `json:"maxLeadsCounts,omitempty"`
	MaxLeadCountPerDay  *int      `json:"maxLeadCountPerDay,omitempty"`
	NotAllowedCountries []string  `json:"notAllowedCountries"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (u *User) LeadQuota() int {
	if u.MaxLeadsCounts == nil || *u.MaxLeadsCounts <= 0 {
		return DefaultMaxLeadsCount
	}
	return *u.MaxLeadsCounts
}

func (u *User) DailyLeadQuota() int {
	if u.MaxLeadCountPerDay == nil || *u.MaxLeadCountPerDay <= 0 {
		return DefaultMaxLeadCountPerDay
	}
	return *u.MaxLeadCountPerDay
}

func (u *User) CountryAllowed(country string) bool {
	if country == "" {
		return true
	}
	for _, c := range u.NotAllowedCountries {
		if c == country {
			return false
		}
	}
	return true
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role.IsAdmin() }
