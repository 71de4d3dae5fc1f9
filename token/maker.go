package token

import (
	"time"

	"github.com/google/uuid"
)

// Maker creates and verifies access and refresh tokens.
type Maker interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
