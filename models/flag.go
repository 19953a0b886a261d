package models

import (
	"time"

	"github.com/google/uuid"
)

type FlagPostRequest struct {
	Reason string `json:"reason"`
}

type Flag struct {
	PostID    string     `json:"postId"`
	Reason    string     `json:"reason,omitempty"`
	FlaggedBy *uuid.UUID `json:"flaggedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type GetFlagsResponse struct {
	Flags []Flag `json:"flags"`
}
