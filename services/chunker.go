package services

import (
	"fmt"
	"strings"

	"pptx-quiz-service/models"
)

// DefaultChunkSize is the number of consecutive slides merged into one
// prompt unit.
const DefaultChunkSize = 3

// ChunkSlides partitions slides into consecutive groups of up to chunkSize
// records and renders each group into a prompt-ready text block. Groups that
// render empty are omitted. Deterministic for a given input.
func ChunkSlides(slides []models.SlideRecord, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	for i := 0; i < len(slides); i += chunkSize {
		end := i + chunkSize
		if end > len(slides) {
			end = len(slides)
		}

		var b strings.Builder
		for _, slide := range slides[i:end] {
			fmt.Fprintf(&b, "\n[Slide %d]\n", slide.SlideNum)
			if slide.Title != "" {
				fmt.Fprintf(&b, "Title: %s\n", slide.Title)
			}
			if slide.Content != "" {
				fmt.Fprintf(&b, "%s\n", slide.Content)
			}
		}

		chunkText := strings.TrimSpace(b.String())
		if chunkText != "" {
			chunks = append(chunks, chunkText)
		}
	}

	return chunks
}
