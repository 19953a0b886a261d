package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kova98/redditscope.api/data"
)

type SectionRepo struct {
	db *sqlx.DB
}

func NewSectionRepo(db *sqlx.DB) *SectionRepo {
	return &SectionRepo{db}
}

// CreateSection adds a monitored section. Adding a section that already exists,
// in any casing, returns the stored one.
func (r *SectionRepo) CreateSection(ctx context.Context, name string) (data.Section, error) {
	query := `
		INSERT INTO sections (name)
		VALUES ($1)
		ON CONFLICT ((LOWER(name))) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return data.Section{}, fmt.Errorf("create section: %w", err)
	}

	var section data.Section
	query = "SELECT name, created_at FROM sections WHERE LOWER(name) = LOWER($1)"
	if err := r.db.GetContext(ctx, &section, query, name); err != nil {
		return data.Section{}, fmt.Errorf("get created section: %w", err)
	}

	return section, nil
}

func (r *SectionRepo) GetSections(ctx context.Context) ([]data.Section, error) {
	var sections []data.Section
	query := `
		SELECT name, created_at
		FROM sections
		ORDER BY created_at ASC, name ASC`

	err := r.db.SelectContext(ctx, &sections, query)
	if err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}

	return sections, nil
}

func (r *SectionRepo) DeleteSection(ctx context.Context, name string) (bool, error) {
	query := "DELETE FROM sections WHERE LOWER(name) = LOWER($1)"
	res, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		return false, fmt.Errorf("delete section: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete section: rows affected: %w", err)
	}

	return n > 0, nil
}
