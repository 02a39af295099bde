package models

// Question is a validated multiple-choice question produced from one chunk.
type Question struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
	Topic       string   `json:"topic"`
}

// MaxChoices is the upper bound on choices kept per question; candidates
// with more are truncated, candidates with fewer than MinChoices are dropped.
const (
	MinChoices = 4
	MaxChoices = 5
)
