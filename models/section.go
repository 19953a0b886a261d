package models

import "time"

type CreateSectionRequest struct {
	Name string `json:"name"`
}

type Section struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetSectionsResponse struct {
	Sections []Section `json:"sections"`
}
