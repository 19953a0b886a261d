package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kova98/redditscope.api/data"
	"github.com/kova98/redditscope.api/models"
)

type KeywordStore interface {
	KeywordLister
	CreateKeyword(ctx context.Context, keyword string) (int, error)
	DeleteKeyword(ctx context.Context, id int) (bool, error)
}

type KeywordHandler struct {
	repo KeywordStore
}

func NewKeywordHandler(repo KeywordStore) *KeywordHandler {
	return &KeywordHandler{repo}
}

func (h *KeywordHandler) CreateKeyword(w http.ResponseWriter, r *http.Request) Result {
	var req models.CreateKeywordRequest
	if err := decodeJSON(r, &req); err != nil {
		return BadRequest("Invalid request.")
	}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return BadRequest("Keyword is required.")
	}

	if n := utf8.RuneCountInString(keyword); n < 2 || n > 50 {
		return BadRequest("Keyword must be between 2 and 50 characters.")
	}

	id, err := h.repo.CreateKeyword(r.Context(), keyword)
	if err != nil {
		return InternalError(err, "create keyword: ")
	}

	return Created(id)
}

func (h *KeywordHandler) GetKeywords(w http.ResponseWriter, r *http.Request) Result {
	keywords, err := h.repo.GetKeywords(r.Context())
	if err != nil {
		return InternalError(err, "get keywords: ")
	}

	res := &models.GetKeywordsResponse{Keywords: make([]models.Keyword, 0, len(keywords))}
	for _, k := range keywords {
		res.Keywords = append(res.Keywords, toKeywordModel(k))
	}

	return Ok(res)
}

func (h *KeywordHandler) DeleteKeyword(w http.ResponseWriter, r *http.Request) Result {
	idStr := r.PathValue("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return BadRequest("Invalid keyword ID.")
	}

	deleted, err := h.repo.DeleteKeyword(r.Context(), id)
	if err != nil {
		return InternalError(err, "delete keyword: ")
	}
	if !deleted {
		return NotFound("Keyword not found.")
	}

	return Ok(nil)
}

func toKeywordModel(k data.Keyword) models.Keyword {
	return models.Keyword{
		ID:        k.ID,
		Keyword:   k.Keyword,
		CreatedAt: k.CreatedAt,
	}
}
