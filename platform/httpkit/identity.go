package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor is the optional caller identity attached to a request.
// Anonymous requests have a nil UserID.
type Actor struct {
	UserID *uuid.UUID
	Roles  []string
}

// IsAuthenticated reports whether a verified token identified the caller.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != nil
}

// HasRole checks if the actor carries a specific role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetActor extracts the Actor set by OptionalAuth from a Gin context.
func GetActor(c *gin.Context) Actor {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Actor{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return Actor{}
	}

	var roles []string
	if v, ok := c.Get(ContextRolesKey); ok {
		roles, _ = v.([]string)
	}
	return Actor{UserID: &uid, Roles: roles}
}
