package services

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const slideXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`

// slideXML renders a minimal slide part with an optional title placeholder
// and one body shape per line.
func slideXML(title string, lines ...string) string {
	var b strings.Builder
	b.WriteString(slideXMLHeader)
	b.WriteString("<p:cSld><p:spTree>")
	if title != "" {
		fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`, title)
	}
	if len(lines) > 0 {
		b.WriteString(`<p:sp><p:nvSpPr><p:nvPr/></p:nvSpPr><p:txBody>`)
		for _, line := range lines {
			fmt.Fprintf(&b, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, line)
		}
		b.WriteString(`</p:txBody></p:sp>`)
	}
	b.WriteString("</p:spTree></p:cSld></p:sld>")
	return b.String()
}

// writePPTX writes a zip with one slide part per entry and returns its path.
func writePPTX(t *testing.T, slideParts []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for i, part := range slideParts {
		w, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		if err != nil {
			t.Fatalf("create slide entry: %v", err)
		}
		if _, err := w.Write([]byte(part)); err != nil {
			t.Fatalf("write slide entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestExtractSlidesTitleAndBody(t *testing.T) {
	path := writePPTX(t, []string{
		slideXML("Introduction", "First point", "Second point"),
	})

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(slides))
	}
	if slides[0].SlideNum != 1 {
		t.Errorf("expected slide_num 1, got %d", slides[0].SlideNum)
	}
	if slides[0].Title != "Introduction" {
		t.Errorf("expected title Introduction, got %q", slides[0].Title)
	}
	if slides[0].Content != "First point\nSecond point" {
		t.Errorf("unexpected content: %q", slides[0].Content)
	}
}

func TestExtractSlidesTableText(t *testing.T) {
	tableSlide := slideXMLHeader + `<p:cSld><p:spTree>` +
		`<p:graphicFrame><a:graphic><a:graphicData><a:tbl>` +
		`<a:tr><a:tc><a:txBody><a:p><a:r><a:t>Name</a:t></a:r></a:p></a:txBody></a:tc>` +
		`<a:tc><a:txBody><a:p><a:r><a:t>Value</a:t></a:r></a:p></a:txBody></a:tc></a:tr>` +
		`<a:tr><a:tc><a:txBody><a:p><a:r><a:t>CPU</a:t></a:r></a:p></a:txBody></a:tc>` +
		`<a:tc><a:txBody><a:p><a:r><a:t>80</a:t></a:r></a:p></a:txBody></a:tc></a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>` +
		`</p:spTree></p:cSld></p:sld>`

	path := writePPTX(t, []string{tableSlide})

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide, got %d", len(slides))
	}
	want := "Name | Value\nCPU | 80"
	if slides[0].Content != want {
		t.Errorf("expected %q, got %q", want, slides[0].Content)
	}
}

func TestExtractSlidesSkipsEmptySlides(t *testing.T) {
	path := writePPTX(t, []string{
		slideXML("", "Body text"),
		slideXML("", ""), // no title, no content
		slideXML("Closing"),
	})

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(slides))
	}
	if slides[0].SlideNum != 1 || slides[1].SlideNum != 3 {
		t.Errorf("expected slide numbers 1 and 3, got %d and %d", slides[0].SlideNum, slides[1].SlideNum)
	}
}

func TestFooterRemovedWhenRecurring(t *testing.T) {
	// "ACME Corp Confidential" appears on 4 of 6 slides (>=50%, >=3 times)
	parts := []string{
		slideXML("S1", "Content one", "ACME Corp Confidential"),
		slideXML("S2", "Content two", "ACME Corp Confidential"),
		slideXML("S3", "Content three", "ACME Corp Confidential"),
		slideXML("S4", "Content four", "ACME Corp Confidential"),
		slideXML("S5", "Content five"),
		slideXML("S6", "Content six"),
	}
	path := writePPTX(t, parts)

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	for _, slide := range slides {
		if strings.Contains(slide.Content, "ACME Corp Confidential") {
			t.Errorf("footer not removed from slide %d: %q", slide.SlideNum, slide.Content)
		}
	}
}

func TestLineOnTwoSlidesIsRetained(t *testing.T) {
	parts := []string{
		slideXML("S1", "Content one", "Shared note"),
		slideXML("S2", "Content two", "Shared note"),
		slideXML("S3", "Content three"),
		slideXML("S4", "Content four"),
	}
	path := writePPTX(t, parts)

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	found := 0
	for _, slide := range slides {
		if strings.Contains(slide.Content, "Shared note") {
			found++
		}
	}
	if found != 2 {
		t.Errorf("expected line on 2 slides to be retained, found on %d", found)
	}
}

func TestPageNumberLinesAlwaysRemoved(t *testing.T) {
	path := writePPTX(t, []string{
		slideXML("S1", "Real content", "3"),
		slideXML("S2", "More content", "Page 3"),
		slideXML("S3", "Extra content", "3 / 10"),
		slideXML("S4", "Final content", "페이지 3"),
	})

	slides, err := ExtractSlides(path)
	if err != nil {
		t.Fatalf("ExtractSlides: %v", err)
	}
	for _, slide := range slides {
		for _, banned := range []string{"3", "Page 3", "3 / 10", "페이지 3"} {
			for _, line := range strings.Split(slide.Content, "\n") {
				if line == banned {
					t.Errorf("page-number line %q survived on slide %d", banned, slide.SlideNum)
				}
			}
		}
		if !strings.Contains(slide.Content, "content") {
			t.Errorf("real content lost on slide %d: %q", slide.SlideNum, slide.Content)
		}
	}
}

func TestExtractSlidesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pptx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := ExtractSlides(path); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}
