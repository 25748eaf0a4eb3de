package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table layouts, applied with ent's migrator on every Open. Columns only
// grow; ent never drops them.
var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	usersTable = &schema.Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	chaptersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	chaptersTable = &schema.Table{
		Name:       "chapters",
		Columns:    chaptersColumns,
		PrimaryKey: []*schema.Column{chaptersColumns[0]},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "question", Type: field.TypeString, Size: 2147483647},
		{Name: "option_a", Type: field.TypeString},
		{Name: "option_b", Type: field.TypeString},
		{Name: "option_c", Type: field.TypeString},
		{Name: "option_d", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString},
		{Name: "source", Type: field.TypeString, Default: "import"},
		{Name: "chapter_id", Type: field.TypeInt},
	}
	questionsTable = &schema.Table{
		Name:       "questions",
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_chapters_questions",
				Columns:    []*schema.Column{questionsColumns[9]},
				RefColumns: []*schema.Column{chaptersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "question_chapter_id_difficulty",
				Columns: []*schema.Column{questionsColumns[9], questionsColumns[1]},
			},
		},
	}

	quizzesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "duration", Type: field.TypeString, Default: ""},
		{Name: "remarks", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeInt},
	}
	quizzesTable = &schema.Table{
		Name:       "quizzes",
		Columns:    quizzesColumns,
		PrimaryKey: []*schema.Column{quizzesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quizzes_users_quizzes",
				Columns:    []*schema.Column{quizzesColumns[4]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	quizQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "quiz_id", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeInt},
	}
	quizQuestionsTable = &schema.Table{
		Name:       "quiz_questions",
		Columns:    quizQuestionsColumns,
		PrimaryKey: []*schema.Column{quizQuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_questions_quizzes_items",
				Columns:    []*schema.Column{quizQuestionsColumns[2]},
				RefColumns: []*schema.Column{quizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "quiz_questions_questions_uses",
				Columns:    []*schema.Column{quizQuestionsColumns[3]},
				RefColumns: []*schema.Column{questionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "quizquestion_quiz_id_question_id",
				Unique:  true,
				Columns: []*schema.Column{quizQuestionsColumns[2], quizQuestionsColumns[3]},
			},
		},
	}

	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "correct", Type: field.TypeInt},
		{Name: "answered", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeInt},
		{Name: "quiz_id", Type: field.TypeInt},
	}
	attemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempts_users_attempts",
				Columns:    []*schema.Column{attemptsColumns[5]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "attempts_quizzes_attempts",
				Columns:    []*schema.Column{attemptsColumns[6]},
				RefColumns: []*schema.Column{quizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	responsesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "given", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "chapter_id", Type: field.TypeInt},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "attempt_id", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeInt},
	}
	responsesTable = &schema.Table{
		Name:       "responses",
		Columns:    responsesColumns,
		PrimaryKey: []*schema.Column{responsesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "responses_attempts_responses",
				Columns:    []*schema.Column{responsesColumns[5]},
				RefColumns: []*schema.Column{attemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "responses_questions_responses",
				Columns:    []*schema.Column{responsesColumns[6]},
				RefColumns: []*schema.Column{questionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	performanceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "chapter_id", Type: field.TypeInt},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "correct", Type: field.TypeInt},
		{Name: "total", Type: field.TypeInt},
		{Name: "user_id", Type: field.TypeInt},
		{Name: "quiz_id", Type: field.TypeInt},
		{Name: "attempt_id", Type: field.TypeInt},
	}
	performanceTable = &schema.Table{
		Name:       "performance",
		Columns:    performanceColumns,
		PrimaryKey: []*schema.Column{performanceColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "performance_users_performance",
				Columns:    []*schema.Column{performanceColumns[5]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "performance_quizzes_performance",
				Columns:    []*schema.Column{performanceColumns[6]},
				RefColumns: []*schema.Column{quizzesColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "performance_attempts_performance",
				Columns:    []*schema.Column{performanceColumns[7]},
				RefColumns: []*schema.Column{attemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "performance_user_id",
				Columns: []*schema.Column{performanceColumns[5]},
			},
		},
	}

	decisionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeInt},
		{Name: "quiz_id", Type: field.TypeInt},
		{Name: "action", Type: field.TypeInt},
		{Name: "chapter_id", Type: field.TypeInt},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "epsilon", Type: field.TypeFloat64},
		{Name: "forced", Type: field.TypeBool, Default: false},
		{Name: "origin", Type: field.TypeString},
		{Name: "question_count", Type: field.TypeInt},
		{Name: "filled", Type: field.TypeInt},
	}
	decisionEventsTable = &schema.Table{
		Name:       "decision_events",
		Columns:    decisionEventsColumns,
		PrimaryKey: []*schema.Column{decisionEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "decisionevent_user_id",
				Columns: []*schema.Column{decisionEventsColumns[3]},
			},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       "llm_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
	}

	trainingRunsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "run_id", Type: field.TypeString, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "weights_path", Type: field.TypeString},
		{Name: "report", Type: field.TypeJSON},
	}
	trainingRunsTable = &schema.Table{
		Name:       "training_runs",
		Columns:    trainingRunsColumns,
		PrimaryKey: []*schema.Column{trainingRunsColumns[0]},
	}

	tables = []*schema.Table{
		usersTable,
		chaptersTable,
		questionsTable,
		quizzesTable,
		quizQuestionsTable,
		attemptsTable,
		responsesTable,
		performanceTable,
		decisionEventsTable,
		llmEventsTable,
		trainingRunsTable,
	}
)

func init() {
	questionsTable.ForeignKeys[0].RefTable = chaptersTable
	quizzesTable.ForeignKeys[0].RefTable = usersTable
	quizQuestionsTable.ForeignKeys[0].RefTable = quizzesTable
	quizQuestionsTable.ForeignKeys[1].RefTable = questionsTable
	attemptsTable.ForeignKeys[0].RefTable = usersTable
	attemptsTable.ForeignKeys[1].RefTable = quizzesTable
	responsesTable.ForeignKeys[0].RefTable = attemptsTable
	responsesTable.ForeignKeys[1].RefTable = questionsTable
	performanceTable.ForeignKeys[0].RefTable = usersTable
	performanceTable.ForeignKeys[1].RefTable = quizzesTable
	performanceTable.ForeignKeys[2].RefTable = attemptsTable
}

// migrate creates or extends every table.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
