package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/seo-insight/backend/llm"
)

// Prompt input limits keep token spend bounded on large pages.
const (
	readabilityContentLimit = 3000
	keywordContentLimit     = 2000
)

// fallbackReadability is substituted whenever the text-generation service
// fails or returns something unparseable. Readability must never hard-fail
// the whole content analysis.
func fallbackReadability() ReadabilityAnalysis {
	return ReadabilityAnalysis{
		Score:                  50,
		ReadingLevel:           "High School",
		SentenceComplexity:     "Moderate",
		VocabularyLevel:        "Intermediate",
		PassiveVoicePercentage: 20,
		Summary:                "Readability analysis unavailable; default assessment applied",
	}
}

const readabilityPrompt = `Analyze the readability of the following content. Respond with exactly one JSON object of the shape:
{"readabilityScore": <0-100>, "readingLevel": "<Elementary|Middle School|High School|College|Graduate>", "sentenceComplexity": "<Simple|Moderate|Complex>", "vocabularyLevel": "<Basic|Intermediate|Advanced>", "passiveVoicePercentage": <0-100>, "improvementAreas": ["..."], "analysisSummary": "..."}

Content:
`

// analyzeReadability asks the text generator for a readability assessment and
// parses the first JSON object in its reply. Any failure degrades to the
// fixed fallback; the second return reports that degradation.
func analyzeReadability(ctx context.Context, gen llm.TextGenerator, content string) (ReadabilityAnalysis, bool) {
	if gen == nil {
		return fallbackReadability(), true
	}

	reply, err := gen.Generate(ctx, readabilityPrompt+truncate(content, readabilityContentLimit))
	if err != nil {
		return fallbackReadability(), true
	}

	blob, err := llm.FirstJSONObject(reply)
	if err != nil {
		return fallbackReadability(), true
	}

	var parsed ReadabilityAnalysis
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		return fallbackReadability(), true
	}
	if parsed.Score < 0 || parsed.Score > 100 {
		return fallbackReadability(), true
	}
	return parsed, false
}

const keywordPrompt = `Extract the most important SEO target keywords from the following content. Respond with exactly one JSON array of lowercase keyword strings, most important first, at most 10 entries.

Content:
`

// resolveKeywords returns the caller-provided keywords when present,
// otherwise asks the text generator, otherwise falls back to significant
// title words. The second return reports whether the service degraded.
func resolveKeywords(ctx context.Context, gen llm.TextGenerator, content, title string, provided []string) ([]string, bool) {
	if len(provided) > 0 {
		return provided, false
	}

	if gen != nil {
		if reply, err := gen.Generate(ctx, keywordPrompt+truncate(content, keywordContentLimit)); err == nil {
			if blob, err := llm.FirstJSONArray(reply); err == nil {
				var keywords []string
				if err := json.Unmarshal([]byte(blob), &keywords); err == nil && len(keywords) > 0 {
					return keywords, false
				}
			}
		}
	}

	return KeywordsFromTitle(title), true
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// drop any UTF-8 sequence the cut split in half
	return strings.ToValidUTF8(s[:limit], "")
}
