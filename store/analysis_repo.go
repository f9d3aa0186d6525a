package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seo-insight/backend/analyzer"
	"github.com/seo-insight/backend/logging"
)

// AnalysisRepo persists and retrieves content analyses. It implements
// analyzer.ResultStore.
type AnalysisRepo interface {
	analyzer.ResultStore
	GetByID(ctx context.Context, id uuid.UUID) (*PageAnalysis, error)
	Latest(ctx context.Context, limit int) ([]PageAnalysis, error)
}

type analysisRepo struct {
	db    *gorm.DB
	cache *RedisCache
	log   *logging.Logger
}

// NewAnalysisRepo builds the repo. cache may be nil, in which case every
// lookup goes straight to Postgres.
func NewAnalysisRepo(db *gorm.DB, cache *RedisCache, baseLog *logging.Logger) AnalysisRepo {
	return &analysisRepo{
		db:    db,
		cache: cache,
		log:   baseLog.With("repo", "AnalysisRepo"),
	}
}

// FindByHash returns the stored analysis for the content hash, or (nil, nil)
// when none exists. Redis is consulted first and backfilled after a database
// hit; cache failures degrade to a plain database lookup.
func (r *analysisRepo) FindByHash(ctx context.Context, contentHash string) (*analyzer.ContentAnalysisResult, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, contentHash)
		if err != nil {
			r.log.Warn("redis lookup failed", "error", err, "content_hash", contentHash)
		} else if raw != nil {
			var result analyzer.ContentAnalysisResult
			if err := json.Unmarshal(raw, &result); err == nil {
				return &result, nil
			}
			r.log.Warn("discarding corrupt cache entry", "content_hash", contentHash)
		}
	}

	var row PageAnalysis
	err := r.db.WithContext(ctx).Where("content_hash = ?", contentHash).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find analysis by hash: %w", err)
	}

	var result analyzer.ContentAnalysisResult
	if err := json.Unmarshal(row.Result, &result); err != nil {
		return nil, fmt.Errorf("decode stored analysis %s: %w", row.ID, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, contentHash, row.Result); err != nil {
			r.log.Warn("redis backfill failed", "error", err, "content_hash", contentHash)
		}
	}

	return &result, nil
}

// Save upserts the analysis. The unique index on content_hash makes
// concurrent writers of the same content converge on one row: conflicts are
// ignored rather than erroring.
func (r *analysisRepo) Save(ctx context.Context, result *analyzer.ContentAnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	row := PageAnalysis{
		ContentHash: result.ContentHash,
		Title:       result.Title,
		Score:       result.ContentScore,
		Degraded:    result.Degraded,
		Result:      payload,
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, result.ContentHash, payload); err != nil {
			r.log.Warn("redis write failed", "error", err, "content_hash", result.ContentHash)
		}
	}

	return nil
}

// GetByID fetches one stored analysis row.
func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*PageAnalysis, error) {
	var row PageAnalysis
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return &row, nil
}

// Latest returns the most recently stored analyses, newest first.
func (r *analysisRepo) Latest(ctx context.Context, limit int) ([]PageAnalysis, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []PageAnalysis
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list latest analyses: %w", err)
	}
	return rows, nil
}
