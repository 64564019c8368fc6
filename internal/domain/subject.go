package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subject groups cards of one user (e.g. "English words").
type Subject struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description *string
	CardCount   int
	LastStudied *time.Time
	CreatedAt   time.Time
}
