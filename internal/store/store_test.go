package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedBank adds one chapter with two questions per difficulty.
func seedBank(t *testing.T, s *Store) []quiz.Question {
	t.Helper()
	ctx := context.Background()
	repo := s.Questions()
	if err := repo.UpsertChapter(ctx, quiz.Chapter{ID: 1, Name: "Statistics"}); err != nil {
		t.Fatalf("upsert chapter: %v", err)
	}
	var qs []quiz.Question
	for _, d := range adaptive.Difficulties {
		for i := 0; i < 2; i++ {
			qs = append(qs, quiz.Question{
				ChapterID:  1,
				Difficulty: d,
				Prompt:     "Mean of 2 and 4?",
				Options:    [4]string{"2", "3", "4", "6"},
				Answer:     "B",
			})
		}
	}
	if err := repo.AddQuestions(ctx, qs, SourceImport); err != nil {
		t.Fatalf("add questions: %v", err)
	}
	return qs
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"users", "questions", "quiz_questions", "performance", "decision_events", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	users := s.Users()

	u, err := users.Create(ctx, " Ada@Example.com ", "Ada")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", u.Email)
	}

	if _, err := users.Create(ctx, "ada@example.com", "Again"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate create err = %v, want ErrDuplicate", err)
	}

	got, err := users.ByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if got.ID != u.ID || got.Name != "Ada" {
		t.Errorf("by email = %+v", got)
	}

	if _, err := users.Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing err = %v, want ErrNotFound", err)
	}

	list, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}
}

func TestQuestionBank(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seeded := seedBank(t, s)
	repo := s.Questions()

	hard, err := repo.QuestionsInBucket(ctx, 1, adaptive.Hard)
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	if len(hard) != 2 {
		t.Fatalf("hard questions = %d, want 2", len(hard))
	}
	if hard[0].Options[1] != "3" || hard[0].Answer != "B" {
		t.Errorf("question round-trip = %+v", hard[0])
	}

	all, err := repo.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("all questions = %d, want 6", len(all))
	}

	ids := []int{seeded[3].ID, seeded[0].ID, 12345}
	byIDs, err := repo.ByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	if len(byIDs) != 2 || byIDs[0].ID != seeded[3].ID || byIDs[1].ID != seeded[0].ID {
		t.Errorf("by ids order = %+v", byIDs)
	}

	counts, err := repo.BucketCounts(ctx)
	if err != nil {
		t.Fatalf("bucket counts: %v", err)
	}
	if counts[adaptive.EncodeAction(1, adaptive.Medium)] != 2 {
		t.Errorf("medium count = %d, want 2", counts[adaptive.EncodeAction(1, adaptive.Medium)])
	}
}

func TestUpsertChapterUpdates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Questions()

	if err := repo.UpsertChapter(ctx, quiz.Chapter{ID: 2, Name: "Trig"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.UpsertChapter(ctx, quiz.Chapter{ID: 2, Name: "Introduction to Trigonometry", Description: "angles"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	chapters, err := repo.Chapters(ctx)
	if err != nil {
		t.Fatalf("chapters: %v", err)
	}
	if len(chapters) != 1 || chapters[0].Name != "Introduction to Trigonometry" {
		t.Errorf("chapters = %+v", chapters)
	}
}

func TestQuizCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := seedBank(t, s)
	u, err := s.Users().Create(ctx, "learner@example.com", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	qz := &Quiz{
		UserID:      u.ID,
		Duration:    "15 mins",
		Remarks:     "Auto-generated",
		QuestionIDs: []int{qs[4].ID, qs[1].ID, qs[2].ID},
	}
	if err := s.Quizzes().Create(ctx, qz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if qz.ID == 0 {
		t.Fatal("expected quiz id to be set")
	}

	got, err := s.Quizzes().Get(ctx, qz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(got.QuestionIDs) != 3 || got.QuestionIDs[0] != qs[4].ID || got.QuestionIDs[2] != qs[2].ID {
		t.Errorf("question order = %v", got.QuestionIDs)
	}

	list, err := s.Quizzes().ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(list) != 1 || len(list[0].QuestionIDs) != 3 {
		t.Errorf("list = %+v", list)
	}

	if _, err := s.Quizzes().Get(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing err = %v, want ErrNotFound", err)
	}
}

func TestAttemptSummaryAggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := seedBank(t, s)
	u, _ := s.Users().Create(ctx, "learner@example.com", "")
	qz := &Quiz{UserID: u.ID, QuestionIDs: []int{qs[0].ID, qs[4].ID}}
	if err := s.Quizzes().Create(ctx, qz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	quizQs := []quiz.Question{qs[0], qs[4]}
	// First attempt: easy right, hard wrong. Second: both right.
	for _, answers := range []map[int]string{
		{qs[0].ID: "B", qs[4].ID: "A"},
		{qs[0].ID: "3", qs[4].ID: "b"},
	} {
		if _, err := s.Attempts().Record(ctx, u.ID, qz.ID, quiz.Grade(quizQs, answers)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	summary, err := s.Attempts().Summary(ctx, u.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := summary.Bucket(1, adaptive.Easy); got != (adaptive.Bucket{Correct: 2, Total: 2}) {
		t.Errorf("easy = %+v, want 2/2", got)
	}
	if got := summary.Bucket(1, adaptive.Hard); got != (adaptive.Bucket{Correct: 1, Total: 2}) {
		t.Errorf("hard = %+v, want 1/2", got)
	}
	if got := summary.Bucket(1, adaptive.Medium); got != (adaptive.Bucket{}) {
		t.Errorf("medium = %+v, want empty", got)
	}

	attempts, err := s.Attempts().ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 2 || attempts[0].Score != 1 || attempts[1].Score != 0.5 {
		t.Errorf("attempts = %+v", attempts)
	}

	responses, err := s.Attempts().Responses(ctx, attempts[1].ID)
	if err != nil {
		t.Fatalf("responses: %v", err)
	}
	if len(responses) != 2 || !responses[0].Correct || responses[1].Correct {
		t.Errorf("responses = %+v", responses)
	}
}

func TestSummaryEmptyForNewUser(t *testing.T) {
	s := openTestStore(t)
	summary, err := s.Attempts().Summary(context.Background(), 42)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := seedBank(t, s)
	u, _ := s.Users().Create(ctx, "gone@example.com", "")
	qz := &Quiz{UserID: u.ID, QuestionIDs: []int{qs[0].ID}}
	if err := s.Quizzes().Create(ctx, qz); err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	if err := s.Users().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Quizzes().Get(ctx, qz.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("quiz after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Users().Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestDecisionEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	for i, a := range []adaptive.Action{8, 2, 17} {
		err := events.AppendDecision(ctx, DecisionEventData{
			UserID:        7,
			QuizID:        i + 1,
			Action:        a,
			Epsilon:       0.01,
			Origin:        "adaptive",
			QuestionCount: 20,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := events.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Purpose: "question-gen", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}

	got, err := events.Decisions(ctx, 7, QueryOpts{})
	if err != nil {
		t.Fatalf("decisions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("decisions = %d, want 3", len(got))
	}
	if got[0].Action != 8 || got[2].Action != 17 {
		t.Errorf("actions = %d, %d", got[0].Action, got[2].Action)
	}
	if !(got[0].Sequence < got[1].Sequence && got[1].Sequence < got[2].Sequence) {
		t.Errorf("sequences not increasing: %d %d %d", got[0].Sequence, got[1].Sequence, got[2].Sequence)
	}

	limited, err := events.Decisions(ctx, 7, QueryOpts{After: got[0].Sequence, Limit: 1})
	if err != nil {
		t.Fatalf("decisions limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Action != 2 {
		t.Errorf("limited = %+v", limited)
	}

	usage, err := events.LLMUsage(ctx)
	if err != nil {
		t.Fatalf("llm usage: %v", err)
	}
	if len(usage) != 1 || usage[0].Requests != 1 || usage[0].Failures != 0 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	for _, model := range []string{"gpt-4o-mini", "claude-haiku-4-5-20251001"} {
		err := events.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        model,
			Purpose:      "question-gen",
			Success:      true,
			RequestBody:  "[user]\nwrite a question",
			ResponseBody: `{"question":"?"}`,
		})
		if err != nil {
			t.Fatalf("append llm: %v", err)
		}
	}

	list, err := events.LLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("llm events: %v", err)
	}
	if len(list) != 2 || list[0].Model != "claude-haiku-4-5-20251001" {
		t.Fatalf("events = %+v", list)
	}
	if list[0].RequestBody != "" {
		t.Errorf("list should not carry bodies")
	}

	one, err := events.LLMEvent(ctx, list[1].ID)
	if err != nil {
		t.Fatalf("llm event: %v", err)
	}
	if one.Model != "gpt-4o-mini" || one.ResponseBody != `{"question":"?"}` {
		t.Errorf("event = %+v", one)
	}

	if _, err := events.LLMEvent(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing event err = %v", err)
	}
}

func TestTrainingRunsLatestAndPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.TrainingRuns()
	ctx := context.Background()

	run, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if run != nil {
		t.Fatal("expected nil run when none exist")
	}

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 7; i++ {
		report, _ := json.Marshal(map[string]int{"episodes": i + 1})
		err := repo.Save(ctx, &TrainingRun{
			RunID:       string(rune('a' + i)),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			WeightsPath: "policy.weights",
			Report:      report,
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM training_runs").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("remaining runs = %d, want 5", count)
	}

	run, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	var report map[string]int
	if err := json.Unmarshal(run.Report, &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if run.RunID != "g" || report["episodes"] != 7 {
		t.Errorf("latest = %s %v, want g / 7", run.RunID, report)
	}

	// Prune with keep larger than the history is a no-op.
	if err := repo.Prune(ctx, 10); err != nil {
		t.Fatalf("prune no-op: %v", err)
	}
}
