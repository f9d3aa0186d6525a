package analyzer

import (
	"math"
	"regexp"
	"strings"
)

// Density thresholds: under 0.5% the keyword is too sparse to register,
// over 3% it reads as stuffing.
const (
	densityStuffingPct  = 3.0
	minOccurrences      = 3
	minWordsForCoverage = 500
	distributionBuckets = 5
)

// Keyword subscore penalties.
const (
	penaltyNotInTitle          = 20
	penaltyNotInHeadings       = 15
	penaltyNotInFirstParagraph = 15
	penaltyUneven              = 15
	penaltySomewhatEven        = 5
	penaltyPerExtraImprovement = 5
)

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "with": {}, "your": {}, "from": {}, "they": {},
	"this": {}, "that": {}, "have": {}, "what": {}, "when": {}, "will": {},
	"how": {}, "why": {}, "about": {}, "into": {}, "more": {}, "their": {},
	"there": {}, "which": {}, "would": {}, "should": {}, "could": {},
}

// KeywordsFromTitle is the last-resort keyword source: non-stopword title
// words longer than three characters, lowercased, in order of appearance.
func KeywordsFromTitle(title string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, w := range strings.Fields(title) {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'()[]"))
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// wordPattern builds a case-insensitive whole-word matcher for the keyword.
// Returns nil when the keyword can't form a valid pattern.
func wordPattern(keyword string) *regexp.Regexp {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return nil
	}
	return re
}

func countOccurrences(text, keyword string) int {
	re := wordPattern(keyword)
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AnalyzeKeywords computes occurrence statistics for the keyword set against
// the content, with the first keyword treated as primary. A pure function of
// its inputs.
func AnalyzeKeywords(content, title string, keywords []string) KeywordAnalysis {
	if len(keywords) == 0 {
		return KeywordAnalysis{
			Distribution: DistributionUneven,
			Score:        50,
			Improvements: []string{"Define target keywords for this page so keyword coverage can be measured"},
		}
	}

	pt := extractText(content)
	words := strings.Fields(pt.fullText)
	totalWords := len(words)

	result := KeywordAnalysis{
		Keywords: keywords,
		Primary:  keywords[0],
	}

	for _, kw := range keywords {
		occ := countOccurrences(pt.fullText, kw)
		density := 0.0
		if totalWords > 0 {
			density = round2(float64(occ) / float64(totalWords) * 100)
		}
		result.Densities = append(result.Densities, KeywordDensity{
			Keyword:        kw,
			Occurrences:    occ,
			DensityPercent: density,
		})
	}

	primary := result.Primary
	result.Occurrences = result.Densities[0].Occurrences
	result.DensityPercent = result.Densities[0].DensityPercent
	result.InTitle = containsFold(title, primary)
	result.InFirstParagraph = containsFold(pt.firstParagraph, primary)
	for _, h := range pt.headings {
		if containsFold(h, primary) {
			result.HeadingsWithKeyword++
		}
	}
	result.Distribution = classifyDistribution(words, primary)

	var improvements []string
	if !result.InTitle {
		improvements = append(improvements, "Include the primary keyword \""+primary+"\" in the page title")
	}
	if result.HeadingsWithKeyword == 0 {
		improvements = append(improvements, "Use the primary keyword in at least one heading")
	}
	if !result.InFirstParagraph {
		improvements = append(improvements, "Mention the primary keyword in the first paragraph")
	}
	if result.Distribution == DistributionUneven {
		improvements = append(improvements, "Spread the primary keyword more evenly through the content")
	}

	extraPenalties := 0
	if result.Occurrences == 0 {
		improvements = append(improvements, "The primary keyword does not appear in the content at all")
		extraPenalties++
	} else if result.DensityPercent > densityStuffingPct {
		improvements = append(improvements, "Keyword density is above 3%; reduce repetition to avoid keyword stuffing")
		extraPenalties++
	} else if result.Occurrences < minOccurrences && totalWords > minWordsForCoverage {
		improvements = append(improvements, "The primary keyword is underused for content of this length; mention it a few more times")
		extraPenalties++
	}

	score := 100.0
	if !result.InTitle {
		score -= penaltyNotInTitle
	}
	if result.HeadingsWithKeyword == 0 {
		score -= penaltyNotInHeadings
	}
	if !result.InFirstParagraph {
		score -= penaltyNotInFirstParagraph
	}
	switch result.Distribution {
	case DistributionUneven:
		score -= penaltyUneven
	case DistributionSomewhatEven:
		score -= penaltySomewhatEven
	}
	score -= float64(extraPenalties * penaltyPerExtraImprovement)
	if score < 0 {
		score = 0
	}

	result.Score = score
	result.Improvements = improvements
	return result
}

// classifyDistribution splits the content into five equal word-count
// sections and buckets how many of them mention the keyword: 70%+ is even,
// 40%+ somewhat even, anything less uneven.
func classifyDistribution(words []string, keyword string) string {
	if len(words) == 0 {
		return DistributionUneven
	}

	sectionSize := (len(words) + distributionBuckets - 1) / distributionBuckets
	sections := 0
	sectionsWith := 0
	for start := 0; start < len(words); start += sectionSize {
		end := start + sectionSize
		if end > len(words) {
			end = len(words)
		}
		sections++
		if countOccurrences(strings.Join(words[start:end], " "), keyword) > 0 {
			sectionsWith++
		}
	}

	ratio := float64(sectionsWith) / float64(sections)
	switch {
	case ratio >= 0.7:
		return DistributionEven
	case ratio >= 0.4:
		return DistributionSomewhatEven
	default:
		return DistributionUneven
	}
}
