package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"pptx-quiz-service/models"
)

type fakeObjectStore struct {
	downloads []string
	removed   []string
	removeErr error
}

func (f *fakeObjectStore) DownloadToFile(ctx context.Context, objectPath, localPath string) error {
	f.downloads = append(f.downloads, objectPath)
	return nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, objectPath string) error {
	f.removed = append(f.removed, objectPath)
	return f.removeErr
}

type trackedUpdate struct {
	status   string
	progress int
	extra    bson.M
}

type fakeTracker struct {
	updates []trackedUpdate
}

func (f *fakeTracker) Update(ctx context.Context, jobID, status string, progress int, extra bson.M) error {
	f.updates = append(f.updates, trackedUpdate{status: status, progress: progress, extra: extra})
	return nil
}

func (f *fakeTracker) last() trackedUpdate {
	return f.updates[len(f.updates)-1]
}

type fakeGenerator struct {
	perChunk int
	calls    int
}

func (f *fakeGenerator) GenerateFromChunk(ctx context.Context, chunkText, difficulty string, keywords []string) []models.Question {
	f.calls++
	questions := make([]models.Question, 0, f.perChunk)
	for i := 0; i < f.perChunk; i++ {
		questions = append(questions, models.Question{
			Question:    fmt.Sprintf("question %d-%d", f.calls, i),
			Choices:     []string{"a", "b", "c", "d", "e"},
			AnswerIndex: 0,
			Explanation: "because",
		})
	}
	return questions
}

type fakeQuizStore struct {
	inserted *models.Quiz
	err      error
}

func (f *fakeQuizStore) InsertQuiz(ctx context.Context, quiz *models.Quiz) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.inserted = quiz
	return "quiz123", nil
}

func newTestPipeline(store *fakeObjectStore, tracker *fakeTracker, gen *fakeGenerator, quizzes *fakeQuizStore, slideCount int) *Pipeline {
	return &Pipeline{
		store:                store,
		tracker:              tracker,
		generator:            gen,
		quizzes:              quizzes,
		extract:              func(string) ([]models.SlideRecord, error) { return makeSlides(slideCount), nil },
		chunkSize:            3,
		defaultQuestionCount: 10,
	}
}

func testRequest(count int) QuizRequest {
	return QuizRequest{
		JobID:         "job1",
		StoragePath:   "pptx-uploads/u1/deck.pptx",
		UserID:        "u1",
		FolderName:    "My Quiz",
		Difficulty:    "medium",
		QuestionCount: count,
	}
}

func TestPipelineStopsEarlyAtRequestedCount(t *testing.T) {
	store := &fakeObjectStore{}
	tracker := &fakeTracker{}
	gen := &fakeGenerator{perChunk: 2}
	quizzes := &fakeQuizStore{}
	// 15 slides -> 5 chunks of 3
	p := newTestPipeline(store, tracker, gen, quizzes, 15)

	result, err := p.Run(context.Background(), testRequest(4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("expected generation to stop after 2 chunks, got %d calls", gen.calls)
	}
	if result.QuestionCount != 4 {
		t.Errorf("expected 4 questions, got %d", result.QuestionCount)
	}
}

func TestPipelineTruncatesOverproduction(t *testing.T) {
	p := newTestPipeline(&fakeObjectStore{}, &fakeTracker{}, &fakeGenerator{perChunk: 3}, &fakeQuizStore{}, 3)

	result, err := p.Run(context.Background(), testRequest(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.QuestionCount != 2 {
		t.Errorf("expected truncation to 2 questions, got %d", result.QuestionCount)
	}
}

func TestPipelineAcceptsUnderproduction(t *testing.T) {
	// one chunk, 2 questions, 10 requested
	p := newTestPipeline(&fakeObjectStore{}, &fakeTracker{}, &fakeGenerator{perChunk: 2}, &fakeQuizStore{}, 3)

	result, err := p.Run(context.Background(), testRequest(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.QuestionCount != 2 {
		t.Errorf("expected 2 questions, got %d", result.QuestionCount)
	}
}

func TestPipelineFailsWhenNoSlideText(t *testing.T) {
	tracker := &fakeTracker{}
	quizzes := &fakeQuizStore{}
	p := newTestPipeline(&fakeObjectStore{}, tracker, &fakeGenerator{perChunk: 2}, quizzes, 0)

	_, err := p.Run(context.Background(), testRequest(5))
	if !errors.Is(err, ErrNoSlideText) {
		t.Fatalf("expected ErrNoSlideText, got %v", err)
	}
	if last := tracker.last(); last.status != models.JobFailed {
		t.Errorf("expected job marked failed, got %q", last.status)
	}
	if quizzes.inserted != nil {
		t.Error("no quiz must be created when extraction finds nothing")
	}
}

func TestPipelineFailsWhenNoQuestionsGenerated(t *testing.T) {
	tracker := &fakeTracker{}
	quizzes := &fakeQuizStore{}
	p := newTestPipeline(&fakeObjectStore{}, tracker, &fakeGenerator{perChunk: 0}, quizzes, 6)

	_, err := p.Run(context.Background(), testRequest(5))
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if last := tracker.last(); last.status != models.JobFailed {
		t.Errorf("expected job marked failed, got %q", last.status)
	}
	if quizzes.inserted != nil {
		t.Error("no quiz must be created when generation comes up empty")
	}
}

func TestPipelineCompletion(t *testing.T) {
	store := &fakeObjectStore{}
	tracker := &fakeTracker{}
	quizzes := &fakeQuizStore{}
	p := newTestPipeline(store, tracker, &fakeGenerator{perChunk: 2}, quizzes, 6)

	result, err := p.Run(context.Background(), testRequest(4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.QuizID != "quiz123" {
		t.Errorf("unexpected quiz id %q", result.QuizID)
	}

	first := tracker.updates[0]
	if first.status != models.JobProcessing || first.progress != 5 {
		t.Errorf("expected first checkpoint processing/5, got %s/%d", first.status, first.progress)
	}
	last := tracker.last()
	if last.status != models.JobCompleted || last.progress != 100 {
		t.Errorf("expected completed/100, got %s/%d", last.status, last.progress)
	}
	if last.extra["quizId"] != "quiz123" || last.extra["questionCount"] != 4 {
		t.Errorf("completion extras missing: %v", last.extra)
	}

	if len(store.removed) != 1 {
		t.Errorf("expected source object deleted once, got %d", len(store.removed))
	}
}

func TestPipelineDeleteFailureIsNotFatal(t *testing.T) {
	store := &fakeObjectStore{removeErr: errors.New("object store down")}
	p := newTestPipeline(store, &fakeTracker{}, &fakeGenerator{perChunk: 2}, &fakeQuizStore{}, 3)

	if _, err := p.Run(context.Background(), testRequest(2)); err != nil {
		t.Fatalf("delete failure must not fail the run: %v", err)
	}
}

func TestPipelineQuizDocumentShape(t *testing.T) {
	quizzes := &fakeQuizStore{}
	p := newTestPipeline(&fakeObjectStore{}, &fakeTracker{}, &fakeGenerator{perChunk: 2}, quizzes, 6)

	req := testRequest(3)
	req.Tags = []string{"networking"}
	req.Keywords = []string{"TCP"}
	if _, err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	quiz := quizzes.inserted
	if quiz == nil {
		t.Fatal("expected quiz to be persisted")
	}
	if quiz.Title != "My Quiz" || quiz.Type != models.QuizTypeLearning || quiz.IsPublic {
		t.Errorf("unexpected quiz header: %+v", quiz)
	}
	if quiz.SourceType != models.SourceTypePPTX || quiz.SlideCount != 6 {
		t.Errorf("unexpected source fields: %+v", quiz)
	}
	if quiz.TotalQuestions != 3 || len(quiz.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		wantID := fmt.Sprintf("q%d", i+1)
		if q.ID != wantID {
			t.Errorf("question %d: expected id %s, got %s", i, wantID, q.ID)
		}
		if q.Type != models.QuestionTypeMultiple {
			t.Errorf("question %d: expected type multiple, got %s", i, q.Type)
		}
	}
}

func TestPipelineFailsWhenPersistenceFails(t *testing.T) {
	tracker := &fakeTracker{}
	quizzes := &fakeQuizStore{err: errors.New("write denied")}
	p := newTestPipeline(&fakeObjectStore{}, tracker, &fakeGenerator{perChunk: 2}, quizzes, 3)

	if _, err := p.Run(context.Background(), testRequest(2)); err == nil {
		t.Fatal("expected persistence error to surface")
	}
	if last := tracker.last(); last.status != models.JobFailed {
		t.Errorf("expected job marked failed, got %q", last.status)
	}
}
