package services

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"

	"pptx-quiz-service/models"
)

// Lines matching a page-number shape are always stripped from slide content.
var pageNumPattern = regexp.MustCompile(`(?i)^\d+$|^페이지\s*\d+|^Page\s*\d+|^\d+\s*/\s*\d+$`)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Repeated short lines are treated as footers when they show up on at least
// half of the slides, three times or more.
const (
	footerMaxLen   = 50
	footerMinCount = 3
)

// ExtractSlides reads a PPTX file and returns per-slide text records in
// slide order. Slides contributing no title and no content are skipped;
// recurring footers and page-number lines are removed afterward.
func ExtractSlides(filePath string) ([]models.SlideRecord, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open presentation: %w", err)
	}
	defer reader.Close()

	type slidePart struct {
		num  int
		file *zip.File
	}
	var parts []slidePart
	for _, f := range reader.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{num: num, file: f})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].num < parts[j].num })

	footerCandidates := make(map[string]int)
	var slides []models.SlideRecord

	for _, part := range parts {
		title, contentParts, err := parseSlidePart(part.file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse slide %d: %w", part.num, err)
		}

		// Track short lines that recur across slides
		for _, text := range contentParts {
			if utf8.RuneCountInString(text) < footerMaxLen {
				footerCandidates[text]++
			}
		}

		content := strings.Join(contentParts, "\n")
		if title != "" || content != "" {
			slides = append(slides, models.SlideRecord{
				SlideNum: part.num,
				Title:    title,
				Content:  content,
			})
		}
	}

	stripBoilerplate(slides, footerCandidates)
	return slides, nil
}

// parseSlidePart pulls the title and the ordered body lines out of one
// slide's XML. Table cells are flattened, cells joined with " | " and rows
// kept as separate lines.
func parseSlidePart(f *zip.File) (string, []string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	doc, err := parseSlideXML(rc)
	if err != nil {
		return "", nil, err
	}
	title, parts := collectSlideText(doc)
	return title, parts, nil
}

func parseSlideXML(r io.Reader) (*xmlquery.Node, error) {
	return xmlquery.Parse(r)
}

// collectSlideText walks the slide's shape tree in document order.
func collectSlideText(doc *xmlquery.Node) (string, []string) {
	var title string
	var contentParts []string

	spTree := xmlquery.FindOne(doc, "//p:cSld/p:spTree")
	if spTree == nil {
		return "", nil
	}

	for child := spTree.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "sp":
			if isTitlePlaceholder(child) {
				if title == "" {
					title = strings.TrimSpace(shapeText(child))
				}
				continue
			}
			for _, p := range xmlquery.Find(child, ".//a:p") {
				text := strings.TrimSpace(runText(p))
				if text != "" {
					contentParts = append(contentParts, text)
				}
			}
		case "graphicFrame":
			for _, tbl := range xmlquery.Find(child, ".//a:tbl") {
				contentParts = append(contentParts, tableText(tbl)...)
			}
		}
	}

	return title, contentParts
}

func isTitlePlaceholder(sp *xmlquery.Node) bool {
	ph := xmlquery.FindOne(sp, "./p:nvSpPr/p:nvPr/p:ph")
	if ph == nil {
		return false
	}
	phType := ph.SelectAttr("type")
	return phType == "title" || phType == "ctrTitle"
}

// shapeText joins the shape's paragraphs with newlines.
func shapeText(sp *xmlquery.Node) string {
	var lines []string
	for _, p := range xmlquery.Find(sp, ".//a:p") {
		lines = append(lines, runText(p))
	}
	return strings.Join(lines, "\n")
}

// runText concatenates the text runs under a node.
func runText(n *xmlquery.Node) string {
	var b strings.Builder
	for _, t := range xmlquery.Find(n, ".//a:t") {
		b.WriteString(t.InnerText())
	}
	return b.String()
}

func tableText(tbl *xmlquery.Node) []string {
	var rows []string
	for _, tr := range xmlquery.Find(tbl, "./a:tr") {
		var cells []string
		for _, tc := range xmlquery.Find(tr, "./a:tc") {
			cellText := strings.TrimSpace(runText(tc))
			if cellText != "" {
				cells = append(cells, cellText)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return rows
}

// stripBoilerplate removes recurring footers and page-number lines from
// every slide's content in place.
func stripBoilerplate(slides []models.SlideRecord, footerCandidates map[string]int) {
	totalSlides := len(slides)
	footers := make(map[string]bool)
	for text, count := range footerCandidates {
		if float64(count) >= float64(totalSlides)*0.5 && count >= footerMinCount {
			footers[text] = true
		}
	}

	for i := range slides {
		lines := strings.Split(slides[i].Content, "\n")
		filtered := lines[:0]
		for _, line := range lines {
			if footers[line] || pageNumPattern.MatchString(strings.TrimSpace(line)) {
				continue
			}
			filtered = append(filtered, line)
		}
		slides[i].Content = strings.Join(filtered, "\n")
	}
}
