package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kova98/redditscope.api/data"
)

type KeywordRepo struct {
	db *sqlx.DB
}

func NewKeywordRepo(db *sqlx.DB) *KeywordRepo {
	return &KeywordRepo{db}
}

func (r *KeywordRepo) CreateKeyword(ctx context.Context, keyword string) (int, error) {
	query := `
		INSERT INTO keywords (keyword)
		VALUES ($1)
		ON CONFLICT ((LOWER(keyword))) DO NOTHING
		RETURNING id`

	rows, err := r.db.QueryxContext(ctx, query, keyword)
	if err != nil {
		return 0, fmt.Errorf("create keyword: %w", err)
	}
	defer rows.Close()

	var id int
	if rows.Next() {
		err = rows.Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("scan returned id: %w", err)
		}
		return id, nil
	}

	query = "SELECT id FROM keywords WHERE LOWER(keyword) = LOWER($1)"
	err = r.db.GetContext(ctx, &id, query, keyword)
	if err != nil {
		return 0, fmt.Errorf("get existing keyword id: %w", err)
	}

	return id, nil
}

func (r *KeywordRepo) GetKeywords(ctx context.Context) ([]data.Keyword, error) {
	var keywords []data.Keyword
	query := `
		SELECT id, keyword, created_at
		FROM keywords
		ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &keywords, query)
	if err != nil {
		return nil, fmt.Errorf("get keywords: %w", err)
	}

	return keywords, nil
}

func (r *KeywordRepo) DeleteKeyword(ctx context.Context, id int) (bool, error) {
	query := "DELETE FROM keywords WHERE id = $1"
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete keyword: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete keyword: rows affected: %w", err)
	}

	return n > 0, nil
}
