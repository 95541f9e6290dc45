package http

import (
	"time"

	"github.com/doorman-auth/doorman/internal/access/domain"
	"github.com/doorman-auth/doorman/internal/access/service"
)

// Response DTOs. The password hash never leaves this package.

type entitlementResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type userResponse struct {
	ID           string                `json:"id"`
	Username     string                `json:"username"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	Email        string                `json:"email"`
	Active       bool                  `json:"is_active"`
	CreatedAt    time.Time             `json:"created_at"`
	Entitlements []entitlementResponse `json:"entitlements"`
}

type auditRecordResponse struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp"`
}

func toEntitlementResponse(e domain.Entitlement) entitlementResponse {
	return entitlementResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toEntitlementResponses(ents []domain.Entitlement) []entitlementResponse {
	out := make([]entitlementResponse, 0, len(ents))
	for _, e := range ents {
		out = append(out, toEntitlementResponse(e))
	}
	return out
}

func toUserResponse(u domain.User, ents []domain.Entitlement) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		Entitlements: toEntitlementResponses(ents),
	}
}

func toUserResponses(users []service.UserWithEntitlements) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u.User, u.Entitlements))
	}
	return out
}

func toAuditRecordResponses(recs []domain.AuditRecord) []auditRecordResponse {
	out := make([]auditRecordResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, auditRecordResponse{
			ID:         rec.ID,
			Actor:      rec.Actor,
			Action:     string(rec.Action),
			TargetType: string(rec.TargetType),
			TargetID:   rec.TargetID,
			Details:    rec.Details,
			Timestamp:  rec.CreatedAt,
		})
	}
	return out
}
