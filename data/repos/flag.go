package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kova98/redditscope.api/data"
)

type FlagRepo struct {
	db *sqlx.DB
}

func NewFlagRepo(db *sqlx.DB) *FlagRepo {
	return &FlagRepo{db}
}

// FlagPost records a flag. Flagging an already flagged post replaces its reason.
func (r *FlagRepo) FlagPost(ctx context.Context, flag data.Flag) error {
	query := `
		INSERT INTO flags (post_id, reason, flagged_by)
		VALUES (:post_id, :reason, :flagged_by)
		ON CONFLICT (post_id) DO UPDATE
		SET reason = EXCLUDED.reason, flagged_by = EXCLUDED.flagged_by`

	_, err := r.db.NamedExecContext(ctx, query, flag)
	if err != nil {
		return fmt.Errorf("flag post: %w", err)
	}

	return nil
}

func (r *FlagRepo) UnflagPost(ctx context.Context, postID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM flags WHERE post_id = $1", postID)
	if err != nil {
		return false, fmt.Errorf("unflag post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unflag post: rows affected: %w", err)
	}

	return n > 0, nil
}

func (r *FlagRepo) GetFlags(ctx context.Context) ([]data.Flag, error) {
	var flags []data.Flag
	query := `
		SELECT post_id, reason, flagged_by, created_at
		FROM flags
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &flags, query)
	if err != nil {
		return nil, fmt.Errorf("get flags: %w", err)
	}

	return flags, nil
}

// GetFlaggedIDs returns which of the given post ids are flagged.
func (r *FlagRepo) GetFlaggedIDs(ctx context.Context, postIDs []string) (map[string]bool, error) {
	flagged := make(map[string]bool)
	if len(postIDs) == 0 {
		return flagged, nil
	}

	query, args, err := sqlx.In(`SELECT post_id FROM flags WHERE post_id IN (?)`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("build get flagged ids: %w", err)
	}
	query = r.db.Rebind(query)

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("get flagged ids: %w", err)
	}

	for _, id := range ids {
		flagged[id] = true
	}
	return flagged, nil
}
