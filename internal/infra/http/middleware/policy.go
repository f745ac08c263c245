package middleware

import (
	"net/http"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type Capability string

const (
	CapViewLeads     Capability = "leads:view"
	CapClaimLeads    Capability = "leads:claim"
	CapUpdateLeads   Capability = "leads:update"
	CapBulkAssign    Capability = "leads:bulk-assign"
	CapViewPayments  Capability = "payments:view"
	CapEditPayments  Capability = "payments:edit"
	CapContracts     Capability = "contracts:render"
	CapNotifications Capability = "notifications"
)

// CapabilitySet is evaluated once per request by Auth.
type CapabilitySet map[Capability]bool

func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// Policy maps every role to what it may do. Roles not listed get nothing.
type Policy map[entity.Role]CapabilitySet

func (p Policy) For(role entity.Role) CapabilitySet {
	if set, ok := p[role]; ok {
		return set
	}
	return CapabilitySet{}
}

func capabilities(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

func DefaultPolicy() Policy {
	admin := capabilities(
		CapViewLeads, CapClaimLeads, CapUpdateLeads, CapBulkAssign,
		CapViewPayments, CapEditPayments, CapContracts, CapNotifications,
	)
	return Policy{
		entity.RoleSuperAdmin: admin,
		entity.RoleAdmin:      admin,
		entity.RoleStaff: capabilities(
			CapViewLeads, CapClaimLeads, CapUpdateLeads,
			CapViewPayments, CapEditPayments, CapContracts, CapNotifications,
		),
		entity.RoleAccountant:       capabilities(CapViewLeads, CapViewPayments, CapEditPayments, CapNotifications),
		entity.RoleContactInitiator: capabilities(CapViewLeads, CapNotifications),
	}
}

// Require lets the request through only when the caller has c.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set, _ := r.Context().Value(capabilitiesKey).(CapabilitySet)
			if !set.Has(c) {
				deny(w, http.StatusForbidden, "ليس لديك صلاحية لتنفيذ هذا الإجراء")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
