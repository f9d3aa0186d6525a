package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeStructureWellFormed(t *testing.T) {
	content := `<h1>Title</h1>
<p>` + strings.Repeat("word ", 50) + `</p>
<h2>Section</h2>
<p>` + strings.Repeat("word ", 50) + `</p>
<ul><li>a</li><li>b</li></ul>
<img src="x.png" alt="x">`

	result := AnalyzeStructure(content)

	assert.Equal(t, 1, result.Headings.H1)
	assert.Equal(t, 1, result.Headings.H2)
	assert.Equal(t, 2, result.ParagraphCount)
	assert.InDelta(t, 50, result.AverageParagraphWords, 0.01)
	assert.Equal(t, 1, result.ListCount)
	assert.Equal(t, 1, result.ImageCount)
	assert.Equal(t, HierarchyGood, result.HeadingStructure)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 100.0, result.Score)
}

func TestAnalyzeStructureMissingH1(t *testing.T) {
	result := AnalyzeStructure("<h2>Intro</h2><p>some text here</p>")

	assert.Equal(t, 0, result.Headings.H1)
	assert.Equal(t, HierarchyNeedsImprovement, result.HeadingStructure)

	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "H1") {
			found = true
		}
	}
	assert.True(t, found, "expected an add-H1 suggestion, got %v", result.Issues)

	// missing-H1 issue plus the hierarchy penalty
	assert.LessOrEqual(t, result.Score, 75.0)
}

func TestAnalyzeStructureMultipleH1(t *testing.T) {
	result := AnalyzeStructure("<h1>One</h1><h1>Two</h1><p>text</p>")
	assert.Equal(t, 2, result.Headings.H1)
	assert.Equal(t, HierarchyNeedsImprovement, result.HeadingStructure)
}

func TestAnalyzeStructureLevelSkip(t *testing.T) {
	result := AnalyzeStructure("<h1>One</h1><h3>Deep</h3><p>text</p>")
	assert.Equal(t, HierarchyNeedsImprovement, result.HeadingStructure)

	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "skip") {
			found = true
		}
	}
	assert.True(t, found, "expected a level-skip issue, got %v", result.Issues)
}

func TestAnalyzeStructureLongContentWithoutListsOrImages(t *testing.T) {
	content := "<h1>T</h1><p>" + strings.Repeat("word ", 300) + "</p>"
	result := AnalyzeStructure(content)

	assert.Greater(t, len(content), richContentChars)
	listIssue, imageIssue := false, false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "lists") {
			listIssue = true
		}
		if strings.Contains(issue, "images") {
			imageIssue = true
		}
	}
	assert.True(t, listIssue)
	assert.True(t, imageIssue)
}

func TestAnalyzeStructureFragmentedParagraphs(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<h1>T</h1>")
	for i := 0; i < 12; i++ {
		sb.WriteString("<p>tiny paragraph here</p>")
	}
	result := AnalyzeStructure(sb.String())

	assert.Equal(t, 12, result.ParagraphCount)
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "fragmented") {
			found = true
		}
	}
	assert.True(t, found, "expected a fragmentation issue, got %v", result.Issues)
}

func TestAnalyzeStructurePlainText(t *testing.T) {
	result := AnalyzeStructure("just a plain sentence with no markup at all")

	assert.Equal(t, HeadingCounts{}, result.Headings)
	assert.Equal(t, 0, result.ParagraphCount)
	assert.Equal(t, 0, result.ListCount)
	assert.Equal(t, 0, result.ImageCount)
	// no markup means no H1 either
	assert.Equal(t, HierarchyNeedsImprovement, result.HeadingStructure)
}

func TestAnalyzeStructureIdempotent(t *testing.T) {
	content := "<h1>A</h1><h2>B</h2><p>" + strings.Repeat("word ", 40) + "</p><ul><li>x</li></ul>"
	first := AnalyzeStructure(content)
	second := AnalyzeStructure(content)
	assert.Equal(t, first, second)
}

func TestExtractTextSeparatesBlocks(t *testing.T) {
	pt := extractText("<h1>Guide</h1><p>seo content here</p>")
	assert.Equal(t, "Guide seo content here", pt.fullText)
	assert.Equal(t, []string{"Guide"}, pt.headings)
	assert.Equal(t, "seo content here", pt.firstParagraph)
}

func TestExtractTextPlainTextFallback(t *testing.T) {
	pt := extractText("first block of text\n\nsecond block")
	assert.Contains(t, pt.fullText, "first block")
	assert.Equal(t, "first block of text", pt.firstParagraph)
	assert.Empty(t, pt.headings)
}
