package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Structure scoring: 10 points per detected issue, 15 more when the heading
// hierarchy itself is broken, floor 0.
const (
	structureIssuePenalty     = 10
	structureHierarchyPenalty = 15

	longParagraphWords  = 100
	shortParagraphWords = 20
	manyParagraphs      = 10
	richContentChars    = 1000
)

// pageText is the extracted textual view of the content that keyword
// analysis works on.
type pageText struct {
	fullText       string
	headings       []string
	firstParagraph string
}

// AnalyzeStructure extracts heading, paragraph, list and image counts from
// the content and scores the document structure. Plain text without markup
// yields zero counts and the natural penalties rather than an error.
func AnalyzeStructure(content string) StructureAnalysis {
	result := StructureAnalysis{HeadingStructure: HierarchyGood}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// html.Parse is forgiving; this is effectively unreachable, but a
		// broken document still gets the zero-structure verdict below.
		doc = nil
	}

	if doc != nil {
		result.Headings = HeadingCounts{
			H1: doc.Find("h1").Length(),
			H2: doc.Find("h2").Length(),
			H3: doc.Find("h3").Length(),
			H4: doc.Find("h4").Length(),
			H5: doc.Find("h5").Length(),
			H6: doc.Find("h6").Length(),
		}
		result.ListCount = doc.Find("ul, ol").Length()
		result.ImageCount = doc.Find("img").Length()

		totalWords := 0
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			result.ParagraphCount++
			totalWords += len(strings.Fields(s.Text()))
		})
		if result.ParagraphCount > 0 {
			result.AverageParagraphWords = float64(totalWords) / float64(result.ParagraphCount)
		}
	}

	var issues []string
	addIssue := func(msg string) { issues = append(issues, msg) }

	h := result.Headings
	switch {
	case h.H1 == 0:
		addIssue("Add an H1 heading; every page needs exactly one")
		result.HeadingStructure = HierarchyNeedsImprovement
	case h.H1 > 1:
		addIssue("Multiple H1 headings found; use exactly one")
		result.HeadingStructure = HierarchyNeedsImprovement
	}

	if (h.H3 > 0 && h.H2 == 0) || (h.H4 > 0 && h.H3 == 0) {
		addIssue("Heading levels skip a rank; nest headings without gaps")
		result.HeadingStructure = HierarchyNeedsImprovement
	}

	if result.AverageParagraphWords > longParagraphWords {
		addIssue("Paragraphs are too long on average; break them up for readability")
	} else if result.ParagraphCount > manyParagraphs && result.AverageParagraphWords < shortParagraphWords {
		addIssue("Content is fragmented into many very short paragraphs; consolidate related ideas")
	}

	if len(content) > richContentChars {
		if result.ListCount == 0 {
			addIssue("Add bulleted or numbered lists to break up long content")
		}
		if result.ImageCount == 0 {
			addIssue("Add images to illustrate long content")
		}
	}

	score := 100.0 - float64(len(issues)*structureIssuePenalty)
	if result.HeadingStructure == HierarchyNeedsImprovement {
		score -= structureHierarchyPenalty
	}
	if score < 0 {
		score = 0
	}

	result.Issues = issues
	result.Score = score
	return result
}

// extractText pulls the visible text, heading texts and first paragraph out
// of the content for keyword analysis. Plain text input falls back to the
// raw string, with the first blank-line-delimited block as the first
// paragraph.
func extractText(content string) pageText {
	pt := pageText{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil {
		var sb strings.Builder
		for _, n := range doc.Nodes {
			collectText(n, &sb)
		}
		pt.fullText = strings.Join(strings.Fields(sb.String()), " ")
		doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
			if txt := strings.TrimSpace(s.Text()); txt != "" {
				pt.headings = append(pt.headings, txt)
			}
		})
		pt.firstParagraph = strings.TrimSpace(doc.Find("p").First().Text())
	}

	if pt.fullText == "" {
		pt.fullText = strings.TrimSpace(content)
	}
	if pt.firstParagraph == "" {
		// plain-text input: the first blank-line-delimited block stands in
		// for the first paragraph
		blocks := strings.SplitN(strings.TrimSpace(content), "\n\n", 2)
		pt.firstParagraph = strings.Join(strings.Fields(blocks[0]), " ")
	}

	return pt
}

// collectText gathers visible text with whitespace between adjacent nodes,
// unlike Selection.Text which concatenates "<h1>A</h1><p>B</p>" into "AB".
func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
