package token

import (
	"errors"
	"fmt"
	"time"

	"bursary-portal-backend/utils"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("token has expired")

type Payload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewPayload(userID uuid.UUID, email string, duration time.Duration) (*Payload, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user id cannot be empty")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().In(utils.DateLocation)
	payload := &Payload{
		ID:        tokenID,
		UserID:    userID,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiredAt: issuedAt.Add(duration),
	}
	return payload, nil
}

func (payload *Payload) Valid() error {
	if time.Now().In(utils.DateLocation).After(payload.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, UserID: %s, Email: %s, IssuedAt: %s, ExpiredAt: %s", p.ID, p.UserID, p.Email, p.IssuedAt, p.ExpiredAt)
}
