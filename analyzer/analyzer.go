// Package analyzer implements the on-page content analysis pipeline:
// readability (via a text-generation service), keyword coverage and document
// structure, combined into one weighted content score.
package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/seo-insight/backend/grading"
	"github.com/seo-insight/backend/llm"
	"github.com/seo-insight/backend/logging"
	"github.com/seo-insight/backend/stats"
)

// Component weights for the combined content score.
const (
	weightReadability = 0.4
	weightKeywords    = 0.3
	weightStructure   = 0.3
)

// ResultStore persists finished analyses keyed by content hash. FindByHash
// returns (nil, nil) on a miss.
type ResultStore interface {
	FindByHash(ctx context.Context, contentHash string) (*ContentAnalysisResult, error)
	Save(ctx context.Context, result *ContentAnalysisResult) error
}

// Analyzer runs content analyses. The text generator, store and stats
// collaborators are all optional: without a generator every LLM-backed stage
// uses its fallback, without a store nothing is memoized.
type Analyzer struct {
	log     *logging.Logger
	textgen llm.TextGenerator
	store   ResultStore
	stats   *stats.Storage
	group   singleflight.Group
}

// New creates an Analyzer. Collaborators may be nil.
func New(log *logging.Logger, textgen llm.TextGenerator, store ResultStore, statsStorage *stats.Storage) *Analyzer {
	return &Analyzer{
		log:     log.With("service", "Analyzer"),
		textgen: textgen,
		store:   store,
		stats:   statsStorage,
	}
}

// ContentHash returns the memoization key for an analysis input. Identical
// content, title and keyword sequence always hash identically.
func ContentHash(content, title string, keywords []string) string {
	h := md5.New()
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(keywords, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzeContent runs the full pipeline for one piece of content. When
// keywords is empty the keyword set is resolved via the text generator or
// the title. Returns nil when analysis is unavailable; callers must treat
// nil as "not yet analyzed", never as a crash.
func (a *Analyzer) AnalyzeContent(ctx context.Context, content, title string, keywords []string) *ContentAnalysisResult {
	hash := ContentHash(content, title, keywords)

	// Concurrent identical requests would otherwise all miss the store and
	// all recompute; collapse them onto one in-flight computation.
	v, err, _ := a.group.Do(hash, func() (interface{}, error) {
		return a.analyze(ctx, hash, content, title, keywords), nil
	})
	if err != nil {
		return nil
	}
	result, _ := v.(*ContentAnalysisResult)
	return result
}

func (a *Analyzer) analyze(ctx context.Context, hash, content, title string, keywords []string) (result *ContentAnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("content analysis panicked", "error", r, "content_hash", hash)
			result = nil
		}
	}()

	if a.store != nil {
		cached, err := a.store.FindByHash(ctx, hash)
		if err != nil {
			a.log.Warn("memoization lookup failed", "error", err, "content_hash", hash)
		} else if cached != nil {
			a.recordStats(1, 0, 0)
			return cached
		}
	}

	readability, readabilityDegraded := analyzeReadability(ctx, a.textgen, content)
	resolved, keywordsDegraded := resolveKeywords(ctx, a.textgen, content, title, keywords)
	keywordAnalysis := AnalyzeKeywords(content, title, resolved)
	structure := AnalyzeStructure(content)

	contentScore := grading.CombineWeighted([]grading.WeightedComponent{
		{Name: "readability", Score: readability.Score, Weight: weightReadability},
		{Name: "keywords", Score: keywordAnalysis.Score, Weight: weightKeywords},
		{Name: "structure", Score: structure.Score, Weight: weightStructure},
	})

	degraded := readabilityDegraded || keywordsDegraded

	result = &ContentAnalysisResult{
		ContentHash:  hash,
		Title:        title,
		Readability:  readability,
		Keywords:     keywordAnalysis,
		Structure:    structure,
		ContentScore: contentScore,
		Grade:        grading.GetGrade(contentScore),
		Improvements: dedupe(readability.ImprovementAreas, keywordAnalysis.Improvements, structure.Issues),
		Degraded:     degraded,
	}

	fallbacks := 0
	if degraded {
		fallbacks = 1
	}
	a.recordStats(0, 1, fallbacks)

	if a.store != nil {
		if err := a.store.Save(ctx, result); err != nil {
			a.log.Warn("failed to persist analysis", "error", err, "content_hash", hash)
		}
	}

	return result
}

func (a *Analyzer) recordStats(memoHits, memoMisses, fallbacks int) {
	if a.stats != nil {
		a.stats.IncrementStats(1, memoHits, memoMisses, fallbacks)
	}
}

// dedupe flattens the suggestion lists, dropping duplicates while keeping
// first-seen order.
func dedupe(lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, list := range lists {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
