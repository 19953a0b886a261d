package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kova98/redditscope.api/data"
	"github.com/kova98/redditscope.api/models"
)

var postIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

const maxFlagReason = 200

type FlagStore interface {
	FlagPost(ctx context.Context, flag data.Flag) error
	UnflagPost(ctx context.Context, postID string) (bool, error)
	GetFlags(ctx context.Context) ([]data.Flag, error)
}

type FlagHandler struct {
	repo FlagStore
}

func NewFlagHandler(repo FlagStore) *FlagHandler {
	return &FlagHandler{repo}
}

// FlagPost serves PUT /flags/{postId}. The body is optional.
func (h *FlagHandler) FlagPost(w http.ResponseWriter, r *http.Request) Result {
	postID := r.PathValue("postId")
	if !postIDPattern.MatchString(postID) {
		return BadRequest("Invalid post ID.")
	}

	var req models.FlagPostRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		return BadRequest("Invalid request.")
	}

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) > maxFlagReason {
		return BadRequest("Reason must be at most 200 characters.")
	}

	flag := data.Flag{PostID: postID, Reason: reason}
	if user, ok := UserFromContext(r.Context()); ok {
		flag.FlaggedBy = uuid.NullUUID{UUID: user.ID, Valid: true}
	}

	if err := h.repo.FlagPost(r.Context(), flag); err != nil {
		return InternalError(err, "flag post: ")
	}

	return Ok(nil)
}

func (h *FlagHandler) UnflagPost(w http.ResponseWriter, r *http.Request) Result {
	postID := r.PathValue("postId")
	if !postIDPattern.MatchString(postID) {
		return BadRequest("Invalid post ID.")
	}

	deleted, err := h.repo.UnflagPost(r.Context(), postID)
	if err != nil {
		return InternalError(err, "unflag post: ")
	}
	if !deleted {
		return NotFound("Flag not found.")
	}

	return Ok(nil)
}

func (h *FlagHandler) GetFlags(w http.ResponseWriter, r *http.Request) Result {
	flags, err := h.repo.GetFlags(r.Context())
	if err != nil {
		return InternalError(err, "get flags: ")
	}

	res := models.GetFlagsResponse{Flags: make([]models.Flag, 0, len(flags))}
	for _, f := range flags {
		flag := models.Flag{
			PostID:    f.PostID,
			Reason:    f.Reason,
			CreatedAt: f.CreatedAt,
		}
		if f.FlaggedBy.Valid {
			id := f.FlaggedBy.UUID
			flag.FlaggedBy = &id
		}
		res.Flags = append(res.Flags, flag)
	}

	return Ok(res)
}
