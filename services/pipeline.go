package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"pptx-quiz-service/internal/logger"
	"pptx-quiz-service/internal/storage"
	"pptx-quiz-service/models"
)

// QuizRequest is the job descriptor submitted to /process-pptx.
type QuizRequest struct {
	JobID         string   `json:"jobId"`
	StoragePath   string   `json:"storagePath"`
	UserID        string   `json:"userId"`
	FolderName    string   `json:"folderName"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"questionCount"`
	Tags          []string `json:"tags"`
	Keywords      []string `json:"keywords"`
}

// PipelineResult is returned on successful completion.
type PipelineResult struct {
	QuizID        string
	QuestionCount int
}

// ChunkGenerator produces validated questions for one chunk, best effort.
type ChunkGenerator interface {
	GenerateFromChunk(ctx context.Context, chunkText, difficulty string, keywords []string) []models.Question
}

// SlideExtractor reads a presentation file into slide records.
type SlideExtractor func(filePath string) ([]models.SlideRecord, error)

var (
	// ErrNoSlideText: the presentation yielded no extractable text. Client error.
	ErrNoSlideText = errors.New("no text found in presentation")
	// ErrNoQuestions: every chunk came back empty. Server error.
	ErrNoQuestions = errors.New("failed to generate questions")
)

// Pipeline sequences one quiz-generation job end to end: download the
// source, extract slide text, chunk, generate questions per chunk, persist
// the quiz and advance the job-status record at fixed checkpoints. One job
// is processed per call, synchronously.
type Pipeline struct {
	store     storage.ObjectStore
	tracker   Tracker
	generator ChunkGenerator
	quizzes   QuizStore
	extract   SlideExtractor

	chunkSize            int
	defaultQuestionCount int
}

func NewPipeline(store storage.ObjectStore, tracker Tracker, generator ChunkGenerator, quizzes QuizStore, chunkSize, defaultQuestionCount int) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if defaultQuestionCount <= 0 {
		defaultQuestionCount = 10
	}
	return &Pipeline{
		store:                store,
		tracker:              tracker,
		generator:            generator,
		quizzes:              quizzes,
		extract:              ExtractSlides,
		chunkSize:            chunkSize,
		defaultQuestionCount: defaultQuestionCount,
	}
}

// Run executes the pipeline for one job. Any error after the request has
// been accepted marks the job failed with the error's message; the job is
// never resumed or retried.
func (p *Pipeline) Run(ctx context.Context, req QuizRequest) (result *PipelineResult, err error) {
	if req.FolderName == "" {
		req.FolderName = "Quiz"
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.QuestionCount <= 0 {
		req.QuestionCount = p.defaultQuestionCount
	}

	// Single top-level catch: convert panics to a failed job, same as any
	// other pipeline error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline failure: %v", r)
			p.fail(req.JobID, err.Error())
		}
	}()

	p.update(ctx, req.JobID, 5, "Downloading presentation...")

	scratchDir, err := os.MkdirTemp("", "quiz-job-*")
	if err != nil {
		p.fail(req.JobID, err.Error())
		return nil, err
	}
	defer os.RemoveAll(scratchDir)

	localPath := filepath.Join(scratchDir, uuid.New().String()+".pptx")
	if err := p.store.DownloadToFile(ctx, req.StoragePath, localPath); err != nil {
		err = fmt.Errorf("failed to download presentation: %w", err)
		p.fail(req.JobID, err.Error())
		return nil, err
	}

	p.update(ctx, req.JobID, 15, "Extracting slide text...")

	slides, err := p.extract(localPath)
	if err != nil {
		p.fail(req.JobID, err.Error())
		return nil, err
	}
	if len(slides) == 0 {
		p.fail(req.JobID, ErrNoSlideText.Error())
		return nil, ErrNoSlideText
	}

	chunks := ChunkSlides(slides, p.chunkSize)

	chunkMsg := fmt.Sprintf("%d slides produced %d chunks", len(slides), len(chunks))
	if len(req.Keywords) > 0 {
		chunkMsg += fmt.Sprintf(" (%d keywords)", len(req.Keywords))
	}
	p.update(ctx, req.JobID, 25, chunkMsg)

	// Chunks are visited strictly in slide order; generation stops as soon
	// as the requested count is reached.
	var accumulated []models.Question
	for i, chunk := range chunks {
		progress := 25 + int(float64(i)/float64(len(chunks))*60)
		p.update(ctx, req.JobID, progress, fmt.Sprintf("Generating questions... (%d/%d)", i+1, len(chunks)))

		accumulated = append(accumulated, p.generator.GenerateFromChunk(ctx, chunk, req.Difficulty, req.Keywords)...)
		if len(accumulated) >= req.QuestionCount {
			break
		}
	}

	if len(accumulated) > req.QuestionCount {
		accumulated = accumulated[:req.QuestionCount]
	}

	if len(accumulated) == 0 {
		p.fail(req.JobID, ErrNoQuestions.Error())
		return nil, ErrNoQuestions
	}

	p.update(ctx, req.JobID, 90, "Saving quiz...")

	quiz := buildQuiz(req, slides, accumulated)
	quizID, err := p.quizzes.InsertQuiz(ctx, quiz)
	if err != nil {
		err = fmt.Errorf("failed to save quiz: %w", err)
		p.fail(req.JobID, err.Error())
		return nil, err
	}

	// Best effort: the source file is only kept for processing, but a
	// failed delete must not roll back the quiz write.
	if err := p.store.Remove(ctx, req.StoragePath); err != nil {
		logger.Warn("failed to delete source presentation", "storagePath", req.StoragePath, "error", err.Error())
	}

	if err := p.tracker.Update(ctx, req.JobID, models.JobCompleted, 100, bson.M{
		"message":       "Quiz generation complete",
		"quizId":        quizID,
		"questionCount": len(accumulated),
	}); err != nil {
		logger.Error("failed to record job completion", "jobId", req.JobID, "error", err.Error())
	}

	return &PipelineResult{QuizID: quizID, QuestionCount: len(accumulated)}, nil
}

func buildQuiz(req QuizRequest, slides []models.SlideRecord, questions []models.Question) *models.Quiz {
	quizQuestions := make([]models.QuizQuestion, 0, len(questions))
	for i, q := range questions {
		quizQuestions = append(quizQuestions, models.QuizQuestion{
			ID:          fmt.Sprintf("q%d", i+1),
			Type:        models.QuestionTypeMultiple,
			Text:        q.Question,
			Choices:     q.Choices,
			Answer:      q.AnswerIndex,
			Explanation: q.Explanation,
			Topic:       q.Topic,
		})
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	keywords := req.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return &models.Quiz{
		Title:          req.FolderName,
		Type:           models.QuizTypeLearning,
		Tags:           tags,
		Questions:      quizQuestions,
		CreatorID:      req.UserID,
		IsPublic:       false,
		TotalQuestions: len(questions),
		SourceType:     models.SourceTypePPTX,
		SlideCount:     len(slides),
		Keywords:       keywords,
	}
}

func (p *Pipeline) update(ctx context.Context, jobID string, progress int, message string) {
	if err := p.tracker.Update(ctx, jobID, models.JobProcessing, progress, bson.M{"message": message}); err != nil {
		logger.Warn("failed to update job status", "jobId", jobID, "error", err.Error())
	}
}

func (p *Pipeline) fail(jobID, errMsg string) {
	// Status writes on the failure path use a fresh context: the request
	// context may already be cancelled.
	if err := p.tracker.Update(context.Background(), jobID, models.JobFailed, 0, bson.M{"error": errMsg}); err != nil {
		logger.Error("failed to mark job failed", "jobId", jobID, "error", err.Error())
	}
}
