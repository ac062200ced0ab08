package store

import (
	"time"

	"github.com/google/uuid"
)

// Session is an active refresh-token session held in memory. Access
// tokens are stateless JWTs; refresh tokens are server-side state so
// logout can revoke them.
type Session struct {
	ID        string    `json:"id"` // refresh token
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
