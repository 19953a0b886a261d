package models

import "time"

type CreateKeywordRequest struct {
	Keyword string `json:"keyword"`
}

type Keyword struct {
	ID        int       `json:"id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetKeywordsResponse struct {
	Keywords []Keyword `json:"keywords"`
}
