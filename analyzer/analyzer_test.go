package analyzer

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-insight/backend/logging"
)

const readabilityReply = `Here is the analysis:
{"readabilityScore": 80, "readingLevel": "College", "sentenceComplexity": "Moderate", "vocabularyLevel": "Advanced", "passiveVoicePercentage": 10, "improvementAreas": ["Shorten long sentences"], "analysisSummary": "Reads well"}`

// stubGenerator returns queued replies in order, repeating the last one, and
// counts calls.
type stubGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	delay   time.Duration
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return "", s.err
	}
	idx := n - 1
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	return s.replies[idx], nil
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memStore is an in-memory ResultStore.
type memStore struct {
	mu    sync.Mutex
	m     map[string]*ContentAnalysisResult
	saves int
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]*ContentAnalysisResult)}
}

func (s *memStore) FindByHash(ctx context.Context, hash string) (*ContentAnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[hash], nil
}

func (s *memStore) Save(ctx context.Context, result *ContentAnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if _, exists := s.m[result.ContentHash]; !exists {
		s.m[result.ContentHash] = result
	}
	return nil
}

const sampleContent = `<h1>SEO Guide</h1>
<p>This guide explains seo fundamentals for anyone starting out with seo today.</p>
<h2>Why seo matters</h2>
<p>Search traffic compounds over time and seo work pays off for years.</p>`

func TestAnalyzeContentPipeline(t *testing.T) {
	gen := &stubGenerator{replies: []string{readabilityReply}}
	a := New(logging.NewNop(), gen, nil, nil)

	result := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", []string{"seo"})
	require.NotNil(t, result)

	assert.False(t, result.Degraded)
	assert.Equal(t, 80.0, result.Readability.Score)
	assert.Equal(t, "College", result.Readability.ReadingLevel)

	assert.Equal(t, "seo", result.Keywords.Primary)
	assert.True(t, result.Keywords.InTitle)
	assert.Greater(t, result.Keywords.HeadingsWithKeyword, 0)

	// combined score follows the documented 0.4/0.3/0.3 weighting
	want := math.Round(result.Readability.Score*0.4 +
		result.Keywords.Score*0.3 +
		result.Structure.Score*0.3)
	assert.Equal(t, want, result.ContentScore)

	assert.NotEmpty(t, result.Grade.Letter)
	assert.Contains(t, result.Improvements, "Shorten long sentences")
}

func TestAnalyzeContentMemoization(t *testing.T) {
	gen := &stubGenerator{replies: []string{readabilityReply}}
	store := newMemStore()
	a := New(logging.NewNop(), gen, store, nil)

	first := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", []string{"seo"})
	require.NotNil(t, first)
	callsAfterFirst := gen.callCount()
	assert.Equal(t, 1, store.saves)

	second := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", []string{"seo"})
	require.NotNil(t, second)

	// the second call must come from the store, not the text generator
	assert.Equal(t, callsAfterFirst, gen.callCount())
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.ContentScore, second.ContentScore)
}

func TestAnalyzeContentConcurrentIdentical(t *testing.T) {
	gen := &stubGenerator{replies: []string{readabilityReply}, delay: 50 * time.Millisecond}
	a := New(logging.NewNop(), gen, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", []string{"seo"})
			assert.NotNil(t, result)
		}()
	}
	wg.Wait()

	// identical in-flight requests collapse onto one computation
	assert.Equal(t, 1, gen.callCount())
}

func TestAnalyzeContentLLMFallback(t *testing.T) {
	gen := &stubGenerator{err: context.DeadlineExceeded}
	a := New(logging.NewNop(), gen, nil, nil)

	result := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", []string{"seo"})
	require.NotNil(t, result)

	assert.True(t, result.Degraded)
	assert.Equal(t, 50.0, result.Readability.Score)
	assert.Equal(t, "High School", result.Readability.ReadingLevel)
	assert.Equal(t, "Moderate", result.Readability.SentenceComplexity)
	assert.Equal(t, "Intermediate", result.Readability.VocabularyLevel)
	assert.Equal(t, 20.0, result.Readability.PassiveVoicePercentage)
}

func TestAnalyzeContentNoGenerator(t *testing.T) {
	a := New(logging.NewNop(), nil, nil, nil)

	result := a.AnalyzeContent(context.Background(), sampleContent, "Technical Writing Basics", nil)
	require.NotNil(t, result)

	assert.True(t, result.Degraded)
	// keywords fall back to significant title words
	assert.Equal(t, []string{"technical", "writing", "basics"}, result.Keywords.Keywords)
}

func TestAnalyzeContentKeywordExtraction(t *testing.T) {
	gen := &stubGenerator{replies: []string{
		readabilityReply,
		`["search optimization", "crawling"]`,
	}}
	a := New(logging.NewNop(), gen, nil, nil)

	result := a.AnalyzeContent(context.Background(), sampleContent, "SEO Guide", nil)
	require.NotNil(t, result)

	assert.Equal(t, 2, gen.callCount())
	assert.Equal(t, []string{"search optimization", "crawling"}, result.Keywords.Keywords)
	assert.Equal(t, "search optimization", result.Keywords.Primary)
	assert.False(t, result.Degraded)
}

func TestContentHash(t *testing.T) {
	h1 := ContentHash("content", "title", []string{"a", "b"})
	h2 := ContentHash("content", "title", []string{"a", "b"})
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)

	assert.NotEqual(t, h1, ContentHash("content", "title", []string{"a"}))
	assert.NotEqual(t, h1, ContentHash("content", "other", []string{"a", "b"}))
	assert.NotEqual(t, h1, ContentHash("other", "title", []string{"a", "b"}))
	// field boundaries matter: moving bytes between fields changes the hash
	assert.NotEqual(t, ContentHash("ab", "c", nil), ContentHash("a", "bc", nil))
}

func TestAnalyzeReadabilityParsesFirstJSONObject(t *testing.T) {
	gen := &stubGenerator{replies: []string{readabilityReply}}

	parsed, degraded := analyzeReadability(context.Background(), gen, "some content")
	assert.False(t, degraded)
	assert.Equal(t, 80.0, parsed.Score)
	assert.Equal(t, []string{"Shorten long sentences"}, parsed.ImprovementAreas)
}

func TestAnalyzeReadabilityRejectsOutOfRangeScore(t *testing.T) {
	gen := &stubGenerator{replies: []string{`{"readabilityScore": 300, "readingLevel": "College"}`}}

	parsed, degraded := analyzeReadability(context.Background(), gen, "some content")
	assert.True(t, degraded)
	assert.Equal(t, 50.0, parsed.Score)
}

func TestDedupe(t *testing.T) {
	got := dedupe(
		[]string{"a", "b"},
		[]string{"b", "c"},
		[]string{"a", "d"},
	)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}
