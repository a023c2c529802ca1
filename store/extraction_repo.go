package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bububa/marksix-agents/marksix"
	"github.com/bububa/marksix-agents/tools/extractor"
)

// ExtractionRepo caches validated draws by image hash
type ExtractionRepo struct {
	DB *sql.DB
	// MaxAge expires entries older than it, zero keeps them forever
	MaxAge time.Duration
}

var _ extractor.Cache = (*ExtractionRepo)(nil)

func NewExtractionRepo(db *sql.DB, maxAge time.Duration) *ExtractionRepo {
	return &ExtractionRepo{DB: db, MaxAge: maxAge}
}

// Find returns the cached draw, rows that are expired or no longer valid are reported as extractor.ErrCacheMiss
func (r *ExtractionRepo) Find(ctx context.Context, imageHash string) (*marksix.DrawResult, error) {
	const q = `select draw_result, created_at
	           from marksix_extractions
	           where image_hash=$1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, imageHash).Scan(&js, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, extractor.ErrCacheMiss
		}
		return nil, err
	}
	if r.MaxAge > 0 && time.Since(ts) > r.MaxAge {
		return nil, extractor.ErrCacheMiss
	}
	result, err := marksix.ParseDrawResult(js)
	if err != nil {
		return nil, extractor.ErrCacheMiss
	}
	return result, nil
}

// Save upserts a draw for the image hash
func (r *ExtractionRepo) Save(ctx context.Context, imageHash string, result *marksix.DrawResult) error {
	js, err := json.Marshal(result)
	if err != nil {
		return err
	}
	const q = `
insert into marksix_extractions(image_hash, draw_result)
values ($1,$2)
on conflict (image_hash)
do update set draw_result=excluded.draw_result, created_at=now()`
	_, err = r.DB.ExecContext(ctx, q, imageHash, js)
	return err
}
