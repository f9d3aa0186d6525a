package analyzer

import "github.com/seo-insight/backend/grading"

// ContentAnalysisResult is the complete analysis of one piece of content.
type ContentAnalysisResult struct {
	ContentHash  string              `json:"contentHash"`
	Title        string              `json:"title"`
	Readability  ReadabilityAnalysis `json:"readability"`
	Keywords     KeywordAnalysis     `json:"keywords"`
	Structure    StructureAnalysis   `json:"structure"`
	ContentScore float64             `json:"contentScore"`
	Grade        grading.Grade       `json:"grade"`
	Improvements []string            `json:"improvements"`
	// Degraded marks results where the text-generation service failed and a
	// fixed fallback was substituted.
	Degraded bool `json:"degraded"`
}

// ReadabilityAnalysis comes from the text-generation service, or from the
// fixed fallback when that service is unavailable.
type ReadabilityAnalysis struct {
	Score                  float64  `json:"readabilityScore"`
	ReadingLevel           string   `json:"readingLevel"`
	SentenceComplexity     string   `json:"sentenceComplexity"`
	VocabularyLevel        string   `json:"vocabularyLevel"`
	PassiveVoicePercentage float64  `json:"passiveVoicePercentage"`
	ImprovementAreas       []string `json:"improvementAreas,omitempty"`
	Summary                string   `json:"analysisSummary,omitempty"`
}

// KeywordDensity is the occurrence statistics for one keyword.
type KeywordDensity struct {
	Keyword        string  `json:"keyword"`
	Occurrences    int     `json:"occurrences"`
	DensityPercent float64 `json:"densityPercent"`
}

// KeywordAnalysis covers the primary (first) keyword in depth and records
// density for the full keyword set.
type KeywordAnalysis struct {
	Keywords            []string         `json:"keywords"`
	Primary             string           `json:"primaryKeyword"`
	Densities           []KeywordDensity `json:"densities"`
	Occurrences         int              `json:"occurrences"`
	DensityPercent      float64          `json:"densityPercent"`
	InTitle             bool             `json:"keywordInTitle"`
	InFirstParagraph    bool             `json:"keywordInFirstParagraph"`
	HeadingsWithKeyword int              `json:"headingsWithKeyword"`
	Distribution        string           `json:"distribution"`
	Score               float64          `json:"score"`
	Improvements        []string         `json:"improvements,omitempty"`
}

// Keyword distribution buckets.
const (
	DistributionEven         = "even"
	DistributionSomewhatEven = "somewhat even"
	DistributionUneven       = "uneven"
)

// HeadingCounts holds per-level heading tag counts.
type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
	H4 int `json:"h4"`
	H5 int `json:"h5"`
	H6 int `json:"h6"`
}

// Heading hierarchy verdicts.
const (
	HierarchyGood             = "good"
	HierarchyNeedsImprovement = "needs-improvement"
)

// StructureAnalysis is a pure function of the HTML: heading counts,
// paragraph shape, lists and images, plus the issues found.
type StructureAnalysis struct {
	Headings              HeadingCounts `json:"headingCount"`
	ParagraphCount        int           `json:"paragraphCount"`
	AverageParagraphWords float64       `json:"averageParagraphLength"`
	ListCount             int           `json:"listCount"`
	ImageCount            int           `json:"imageCount"`
	HeadingStructure      string        `json:"headingStructure"`
	Issues                []string      `json:"issues,omitempty"`
	Score                 float64       `json:"score"`
}
