package admin

import (
	"strings"
	"time"

	"origo/internal/permission"
	id "origo/pkg/domain"
	dErrors "origo/pkg/domain-errors"
)

// MintTokenRequest asks for a staff access token. Operators use this to
// bootstrap credentials for back-office tooling and tests.
type MintTokenRequest struct {
	ActorID  string `json:"actor_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	TTL      string `json:"ttl,omitempty"`

	parsedActor  id.ActorID
	parsedTenant id.TenantID
	parsedRole   permission.Role
	parsedTTL    time.Duration
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MintTokenRequest) Validate() error {
	actorID, err := id.ParseActorID(strings.TrimSpace(r.ActorID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "actor_id must be a valid uuid")
	}
	tenantID, err := id.ParseTenantID(strings.TrimSpace(r.TenantID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "tenant_id must be a valid uuid")
	}
	role, ok := permission.ParseRole(strings.TrimSpace(r.Role))
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "role must be one of viewer, agent, supervisor, admin")
	}

	r.parsedActor = actorID
	r.parsedTenant = tenantID
	r.parsedRole = role
	r.parsedTTL = 0
	if r.TTL != "" {
		ttl, err := time.ParseDuration(r.TTL)
		if err != nil || ttl <= 0 {
			return dErrors.New(dErrors.CodeValidation, "ttl must be a positive duration such as 30m or 2h")
		}
		r.parsedTTL = ttl
	}
	return nil
}

// ParsedActor returns the validated actor ID.
func (r *MintTokenRequest) ParsedActor() id.ActorID { return r.parsedActor }

// ParsedTenant returns the validated tenant ID.
func (r *MintTokenRequest) ParsedTenant() id.TenantID { return r.parsedTenant }

// ParsedRole returns the validated staff role.
func (r *MintTokenRequest) ParsedRole() permission.Role { return r.parsedRole }

// ParsedTTL returns the requested token lifetime, or zero when the caller
// left it to the server default.
func (r *MintTokenRequest) ParsedTTL() time.Duration { return r.parsedTTL }
