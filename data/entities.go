package data

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated caller resolved from Keycloak. It is not persisted.
type User struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Email       string
	Avatar      string
}

type Section struct {
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Keyword struct {
	ID        int       `db:"id"`
	Keyword   string    `db:"keyword"`
	CreatedAt time.Time `db:"created_at"`
}

type Flag struct {
	PostID    string        `db:"post_id"`
	Reason    string        `db:"reason"`
	FlaggedBy uuid.NullUUID `db:"flagged_by"`
	CreatedAt time.Time     `db:"created_at"`
}
