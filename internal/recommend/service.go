package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
	"github.com/abhisek/quizadapt/internal/store"
)

// ErrNotOwner is returned when a learner submits someone else's quiz.
var ErrNotOwner = errors.New("quiz belongs to another user")

// ErrEmptyBank is returned when no question could be selected at all.
var ErrEmptyBank = errors.New("question bank is empty")

// QuestionStore is the question access the service needs.
type QuestionStore interface {
	quiz.Bank
	ByIDs(ctx context.Context, ids []int) ([]quiz.Question, error)
	Chapters(ctx context.Context) ([]quiz.Chapter, error)
}

// Deps bundles the repositories the service uses.
type Deps struct {
	Users     store.UserRepo
	Questions QuestionStore
	Quizzes   store.QuizRepo
	Attempts  store.AttemptRepo
	Events    store.EventRepo
}

// DepsFromStore wires every repository from one store.
func DepsFromStore(st *store.Store) Deps {
	return Deps{
		Users:     st.Users(),
		Questions: st.Questions(),
		Quizzes:   st.Quizzes(),
		Attempts:  st.Attempts(),
		Events:    st.Events(),
	}
}

// Config tunes quiz construction.
type Config struct {
	QuizCount        int // questions per adaptive quiz
	StarterPerBucket int // questions per bucket in a new learner's first quiz
}

// DefaultConfig returns the standard quiz sizes.
func DefaultConfig() Config {
	return Config{
		QuizCount:        quiz.DefaultCount,
		StarterPerBucket: quiz.DefaultStarterPerBucket,
	}
}

// Service turns learner records into quizzes using the shared policy. It only
// runs inference; learning happens offline.
type Service struct {
	deps      Deps
	policy    *Policy
	assembler *quiz.Assembler
	cfg       Config
	rng       *rand.Rand
}

// NewService creates a Service. A nil rng gets a randomly seeded one. The
// service serializes its use of rng, so it is safe for concurrent requests.
func NewService(deps Deps, policy *Policy, cfg Config, rng *rand.Rand) *Service {
	var src rand.Source = rng
	if rng == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	rng = rand.New(&lockedSource{src: src})
	chapterCount := policy.Config().ChapterCount
	return &Service{
		deps:      deps,
		policy:    policy,
		assembler: quiz.NewAssembler(deps.Questions, policy, chapterCount, rng),
		cfg:       cfg,
		rng:       rng,
	}
}

// Policy returns the shared policy.
func (s *Service) Policy() *Policy {
	return s.policy
}

// Register creates a learner and assigns the starter quiz.
func (s *Service) Register(ctx context.Context, email, name string) (*store.User, *store.Quiz, error) {
	u, err := s.deps.Users.Create(ctx, email, name)
	if err != nil {
		return nil, nil, err
	}

	chapterCount := s.policy.Config().ChapterCount
	qs, skipped, err := quiz.Starter(ctx, s.deps.Questions, chapterCount, s.cfg.StarterPerBucket, s.rng)
	if err != nil {
		return u, nil, fmt.Errorf("build starter quiz: %w", err)
	}
	if msg := skippedWarning(skipped); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}

	qz := &store.Quiz{
		UserID:      u.ID,
		Duration:    StarterDuration,
		Remarks:     StarterRemarks,
		QuestionIDs: lo.Map(qs, func(q quiz.Question, _ int) int { return q.ID }),
	}
	if err := s.deps.Quizzes.Create(ctx, qz); err != nil {
		return u, nil, fmt.Errorf("save starter quiz: %w", err)
	}
	return u, qz, nil
}

// skippedWarning folds the buckets left out of a starter quiz into one line.
func skippedWarning(skipped []adaptive.Action) string {
	if len(skipped) == 0 {
		return ""
	}
	names := lo.Map(skipped, func(a adaptive.Action, _ int) string { return a.String() })
	return fmt.Sprintf("warning: starter quiz skipped %d thin bucket(s): %s", len(skipped), strings.Join(names, ", "))
}

// Login returns the learner with email and the quiz they should take next:
// the newest quiz they have not attempted, or a freshly assembled one. An
// unknown email registers a new learner with the starter quiz.
func (s *Service) Login(ctx context.Context, email, name string) (*store.User, *store.Quiz, error) {
	u, err := s.deps.Users.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		if name == "" {
			name = email
		}
		return s.Register(ctx, email, name)
	}
	if err != nil {
		return nil, nil, err
	}

	quizzes, err := s.deps.Quizzes.ListByUser(ctx, u.ID)
	if err != nil {
		return u, nil, err
	}
	attempts, err := s.deps.Attempts.ListByUser(ctx, u.ID)
	if err != nil {
		return u, nil, err
	}
	done := lo.SliceToMap(attempts, func(a store.Attempt) (int, bool) { return a.QuizID, true })
	if pending, ok := lo.Find(quizzes, func(q store.Quiz) bool { return !done[q.ID] }); ok {
		return u, &pending, nil
	}

	plan, err := s.NextQuiz(ctx, u.ID, NextOptions{})
	if err != nil {
		return u, nil, err
	}
	return u, plan.Quiz, nil
}

// DeleteUser removes a learner with their quizzes and attempts.
func (s *Service) DeleteUser(ctx context.Context, userID int) error {
	return s.deps.Users.Delete(ctx, userID)
}

// Summary returns a learner's aggregate record.
func (s *Service) Summary(ctx context.Context, userID int) (adaptive.PerformanceSummary, error) {
	if _, err := s.deps.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.deps.Attempts.Summary(ctx, userID)
}

// State returns the encoded state vector for a learner.
func (s *Service) State(ctx context.Context, userID int) ([]float64, adaptive.PerformanceSummary, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return adaptive.Encode(summary, s.policy.Config().ChapterCount), summary, nil
}

// Insights classifies the learner's chapters.
func (s *Service) Insights(ctx context.Context, userID int) (*Insights, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.deps.Questions.Chapters(ctx)
	if err != nil {
		return nil, err
	}
	return BuildInsights(chapters, summary), nil
}

// NextQuiz assembles and stores a quiz from the learner's record, letting the
// policy choose buckets unless opts pins one.
func (s *Service) NextQuiz(ctx context.Context, userID int, opts NextOptions) (*Plan, error) {
	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	count := opts.Count
	if count <= 0 {
		count = s.cfg.QuizCount
	}
	req := quiz.Request{
		Summary:          summary,
		ForcedChapter:    opts.Chapter,
		ForcedDifficulty: opts.Difficulty,
		Count:            count,
	}
	return s.assemble(ctx, userID, req, OriginAdaptive)
}

// Submit grades an attempt, records it, and prepares the follow-up quiz:
// the policy picks one bucket from the updated record and the new quiz is
// built around it.
func (s *Service) Submit(ctx context.Context, userID, quizID int, answers map[int]string) (*Outcome, error) {
	qz, err := s.deps.Quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if qz.UserID != userID {
		return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNotOwner)
	}

	questions, err := s.deps.Questions.ByIDs(ctx, qz.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load quiz questions: %w", err)
	}
	grading := quiz.Grade(questions, answers)

	attempt, err := s.deps.Attempts.Record(ctx, userID, quizID, grading)
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}
	out := &Outcome{Attempt: attempt, Grading: grading}

	summary, err := s.deps.Attempts.Summary(ctx, userID)
	if err != nil {
		return out, fmt.Errorf("load summary: %w", err)
	}
	state := adaptive.Encode(summary, s.policy.Config().ChapterCount)
	action, err := s.policy.Act(state)
	if err != nil {
		return out, fmt.Errorf("choose next bucket: %w", err)
	}
	ch, d := adaptive.DecodeAction(action)

	next, err := s.assemble(ctx, userID, quiz.Request{
		Summary:          summary,
		ForcedChapter:    &ch,
		ForcedDifficulty: &d,
		Count:            s.cfg.QuizCount,
	}, OriginSubmit)
	if err != nil {
		return out, fmt.Errorf("quiz submitted but next quiz failed: %w", err)
	}
	out.Next = next
	return out, nil
}

// QuizQuestions returns a quiz and its questions without answers.
func (s *Service) QuizQuestions(ctx context.Context, quizID int) (*store.Quiz, []quiz.Question, error) {
	qz, err := s.deps.Quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	qs, err := s.deps.Questions.ByIDs(ctx, qz.QuestionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load quiz questions: %w", err)
	}
	return qz, lo.Map(qs, func(q quiz.Question, _ int) quiz.Question { return q.Redacted() }), nil
}

// Quizzes lists a learner's quizzes, newest first.
func (s *Service) Quizzes(ctx context.Context, userID int) ([]store.Quiz, error) {
	if _, err := s.deps.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.deps.Quizzes.ListByUser(ctx, userID)
}

// History lists a learner's graded attempts, newest first.
func (s *Service) History(ctx context.Context, userID int) ([]store.Attempt, error) {
	if _, err := s.deps.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.deps.Attempts.ListByUser(ctx, userID)
}

// Responses returns the graded answers of one attempt.
func (s *Service) Responses(ctx context.Context, attemptID int) ([]quiz.Response, error) {
	return s.deps.Attempts.Responses(ctx, attemptID)
}

// Decisions returns a learner's latest n policy decisions, oldest first. A
// non-positive n returns all of them.
func (s *Service) Decisions(ctx context.Context, userID, n int) ([]store.DecisionEvent, error) {
	if _, err := s.deps.Users.Get(ctx, userID); err != nil {
		return nil, err
	}
	events, err := s.deps.Events.Decisions(ctx, userID, store.QueryOpts{})
	if err != nil {
		return nil, err
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}

func (s *Service) assemble(ctx context.Context, userID int, req quiz.Request, origin string) (*Plan, error) {
	res, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(res.Questions) == 0 {
		return nil, ErrEmptyBank
	}

	qz := &store.Quiz{
		UserID:      userID,
		Duration:    AdaptiveDuration,
		Remarks:     AdaptiveRemarks,
		QuestionIDs: res.QuestionIDs(),
	}
	if err := s.deps.Quizzes.Create(ctx, qz); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	action := adaptive.Action(-1)
	if req.Forced() {
		action = adaptive.EncodeAction(*req.ForcedChapter, *req.ForcedDifficulty)
	} else if len(res.Actions) > 0 {
		action = res.Actions[0]
	}

	plan := newPlan(qz, action, req.Forced(), res)
	if action >= 0 {
		err := s.deps.Events.AppendDecision(ctx, store.DecisionEventData{
			UserID:        userID,
			QuizID:        qz.ID,
			Action:        action,
			Epsilon:       s.policy.Epsilon(),
			Forced:        req.Forced(),
			Origin:        origin,
			QuestionCount: len(res.Questions),
			Filled:        res.Filled,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to log quiz decision: %v\n", err)
		}
	}
	return plan, nil
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}
