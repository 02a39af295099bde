package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"pptx-quiz-service/internal/logger"
	"pptx-quiz-service/models"
)

// TextGenerator is the generative-language surface the question generator
// needs. Implemented by ai.GeminiClient.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// QuestionGenerator turns one chunk of slide text into validated
// multiple-choice questions. Each chunk gets exactly one API call; a failed
// or malformed call yields zero questions and the caller moves on.
type QuestionGenerator struct {
	gen TextGenerator
}

func NewQuestionGenerator(gen TextGenerator) *QuestionGenerator {
	return &QuestionGenerator{gen: gen}
}

var difficultyPhrases = map[string]string{
	"easy":   "easy questions that check basic concepts",
	"medium": "medium-difficulty questions that test understanding",
	"hard":   "hard questions that require applying the material",
}

var (
	fencedJSONPattern = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	jsonArrayPattern  = regexp.MustCompile(`\[[\s\S]*\]`)
)

// GenerateFromChunk produces the ordered validated questions for one chunk,
// possibly none. Errors are logged and swallowed so the pipeline continues
// with the next chunk.
func (qg *QuestionGenerator) GenerateFromChunk(ctx context.Context, chunkText, difficulty string, keywords []string) []models.Question {
	prompt := BuildQuizPrompt(chunkText, difficulty, keywords)

	reply, err := qg.gen.GenerateText(ctx, prompt)
	if err != nil {
		logger.Warn("question generation call failed", "error", err.Error())
		return nil
	}

	questions := ParseQuestions(reply)
	if len(questions) == 0 {
		logger.Warn("no usable questions in model reply", "reply_prefix", truncateForLog(reply, 200))
	}
	return questions
}

// BuildQuizPrompt composes the generation instruction: 2-3 multiple-choice
// questions with exactly 5 choices, phrased per difficulty, with a strict
// JSON output contract and optional keyword emphasis.
func BuildQuizPrompt(chunkText, difficulty string, keywords []string) string {
	phrase, ok := difficultyPhrases[difficulty]
	if !ok {
		phrase = difficultyPhrases["medium"]
	}

	keywordInstruction := ""
	if len(keywords) > 0 {
		keywordInstruction = fmt.Sprintf("\n4. Center the questions on these keywords: %s", strings.Join(keywords, ", "))
	}

	return fmt.Sprintf(`Based on the study material below, generate 2-3 %s.

[Study material]
%s

[Requirements]
1. Each question must test a core concept of the material.
2. Provide exactly 5 choices per question, with plausible distractors.
3. Respond with the JSON format below and nothing else.%s

[JSON format]
`+"```json"+`
[
  {
    "question": "question text",
    "choices": ["choice 1", "choice 2", "choice 3", "choice 4", "choice 5"],
    "answer_index": 0,
    "explanation": "why the answer is correct",
    "topic": "related topic"
  }
]
`+"```"+`
`, phrase, chunkText, keywordInstruction)
}

// questionCandidate mirrors the JSON contract; answer_index is a pointer so
// a missing field can be told apart from zero.
type questionCandidate struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex *int     `json:"answer_index"`
	Explanation string   `json:"explanation"`
	Topic       string   `json:"topic"`
}

// ParseQuestions locates the structured-output block in a model reply and
// returns the validated questions. Candidates missing required fields, with
// fewer than 4 choices or an out-of-range answer index are silently dropped.
func ParseQuestions(reply string) []models.Question {
	jsonStr, ok := extractJSONBlock(reply)
	if !ok {
		return nil
	}

	var candidates []questionCandidate
	if err := json.Unmarshal([]byte(jsonStr), &candidates); err != nil {
		return nil
	}

	var questions []models.Question
	for _, cand := range candidates {
		if cand.Question == "" || cand.Explanation == "" || cand.AnswerIndex == nil {
			continue
		}
		if len(cand.Choices) < models.MinChoices {
			continue
		}
		if *cand.AnswerIndex < 0 || *cand.AnswerIndex >= len(cand.Choices) {
			continue
		}

		choices := cand.Choices
		if len(choices) > models.MaxChoices {
			choices = choices[:models.MaxChoices]
		}

		questions = append(questions, models.Question{
			Question:    cand.Question,
			Choices:     choices,
			AnswerIndex: *cand.AnswerIndex,
			Explanation: cand.Explanation,
			Topic:       cand.Topic,
		})
	}
	return questions
}

// extractJSONBlock takes the fenced ```json block if present, otherwise the
// first bracketed array in the raw reply.
func extractJSONBlock(reply string) (string, bool) {
	if m := fencedJSONPattern.FindStringSubmatch(reply); m != nil {
		return m[1], true
	}
	if m := jsonArrayPattern.FindString(reply); m != "" {
		return m, true
	}
	return "", false
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
