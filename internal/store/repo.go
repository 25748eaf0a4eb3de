package store

import (
	"context"
	"time"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/quiz"
)

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// User is a registered learner.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRepo manages learners.
type UserRepo interface {
	// Create inserts a learner. A duplicate email returns ErrDuplicate.
	Create(ctx context.Context, email, name string) (*User, error)

	// Get returns a learner by id, or ErrNotFound.
	Get(ctx context.Context, id int) (*User, error)

	// ByEmail returns a learner by email, or ErrNotFound.
	ByEmail(ctx context.Context, email string) (*User, error)

	// List returns every learner ordered by id.
	List(ctx context.Context) ([]User, error)

	// Delete removes a learner and everything they own.
	Delete(ctx context.Context, id int) error
}

// Quiz is a persisted, ordered set of questions assigned to a learner.
type Quiz struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Duration    string    `json:"duration"`
	Remarks     string    `json:"remarks"`
	CreatedAt   time.Time `json:"createdAt"`
	QuestionIDs []int     `json:"questionIds"`
}

// QuizRepo manages quizzes.
type QuizRepo interface {
	// Create stores a quiz and its question links in one transaction.
	Create(ctx context.Context, q *Quiz) error

	// Get returns a quiz with its question ids in order, or ErrNotFound.
	Get(ctx context.Context, id int) (*Quiz, error)

	// ListByUser returns a learner's quizzes, newest first.
	ListByUser(ctx context.Context, userID int) ([]Quiz, error)
}

// Attempt is one graded submission of a quiz.
type Attempt struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	QuizID    int       `json:"quizId"`
	Score     float64   `json:"score"`
	Correct   int       `json:"correct"`
	Answered  int       `json:"answered"`
	CreatedAt time.Time `json:"createdAt"`
}

// AttemptRepo records graded attempts and aggregates performance.
type AttemptRepo interface {
	// Record stores the attempt, its responses and its per-bucket performance
	// rows in one transaction and returns the stored attempt.
	Record(ctx context.Context, userID, quizID int, g quiz.Grading) (*Attempt, error)

	// ListByUser returns a learner's attempts, newest first.
	ListByUser(ctx context.Context, userID int) ([]Attempt, error)

	// Responses returns the graded answers of one attempt.
	Responses(ctx context.Context, attemptID int) ([]quiz.Response, error)

	// Summary sums every performance row of a learner per chapter and
	// difficulty.
	Summary(ctx context.Context, userID int) (adaptive.PerformanceSummary, error)
}

// DecisionEventData captures one policy decision that produced a quiz.
type DecisionEventData struct {
	UserID        int
	QuizID        int
	Action        adaptive.Action
	Epsilon       float64
	Forced        bool
	Origin        string // "adaptive", "submit", "starter"
	QuestionCount int
	Filled        int
}

// DecisionEvent is a stored DecisionEventData.
type DecisionEvent struct {
	DecisionEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLMRequestEventData.
type LLMEvent struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMUsage aggregates LLM events per purpose and model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendDecision records a quiz decision.
	AppendDecision(ctx context.Context, data DecisionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// Decisions returns a learner's decisions in sequence order.
	Decisions(ctx context.Context, userID int, opts QueryOpts) ([]DecisionEvent, error)

	// LLMEvents returns LLM events newest first, without bodies.
	LLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// LLMEvent returns one LLM event with its request and response, or
	// ErrNotFound.
	LLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsage sums LLM events per purpose and model.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}
