package handlers

import (
	"context"
	"net/http"

	"github.com/kova98/redditscope.api/data"
	"github.com/kova98/redditscope.api/matchers"
	"github.com/kova98/redditscope.api/models"
)

type SectionStore interface {
	SectionLister
	CreateSection(ctx context.Context, name string) (data.Section, error)
	DeleteSection(ctx context.Context, name string) (bool, error)
}

type SectionHandler struct {
	repo SectionStore
}

func NewSectionHandler(repo SectionStore) *SectionHandler {
	return &SectionHandler{repo}
}

func (h *SectionHandler) CreateSection(w http.ResponseWriter, r *http.Request) Result {
	var req models.CreateSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		return BadRequest("Invalid request.")
	}

	name, err := matchers.NormalizeSection(req.Name)
	if err != nil {
		return BadRequest("Section must be 2-21 characters of letters, digits or underscores.")
	}

	section, err := h.repo.CreateSection(r.Context(), name)
	if err != nil {
		return InternalError(err, "create section: ")
	}

	return Created(section.Name)
}

func (h *SectionHandler) GetSections(w http.ResponseWriter, r *http.Request) Result {
	sections, err := h.repo.GetSections(r.Context())
	if err != nil {
		return InternalError(err, "get sections: ")
	}

	res := models.GetSectionsResponse{Sections: make([]models.Section, 0, len(sections))}
	for _, s := range sections {
		res.Sections = append(res.Sections, models.Section{
			Name:      s.Name,
			CreatedAt: s.CreatedAt,
		})
	}

	return Ok(res)
}

func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *http.Request) Result {
	name, err := matchers.NormalizeSection(r.PathValue("name"))
	if err != nil {
		return BadRequest("Invalid section name.")
	}

	deleted, err := h.repo.DeleteSection(r.Context(), name)
	if err != nil {
		return InternalError(err, "delete section: ")
	}
	if !deleted {
		return NotFound("Section not found.")
	}

	return Ok(nil)
}
