package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizadapt/internal/adaptive"
	"github.com/abhisek/quizadapt/internal/recommend"
	"github.com/abhisek/quizadapt/internal/store"
)

type registerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

type adaptiveRequest struct {
	Chapter    *int   `json:"chapter"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count" binding:"gte=0,lte=100"`
}

type submitRequest struct {
	// Answers maps question id to the chosen option letter or text.
	Answers map[int]string `json:"answers" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, qz, err := s.svc.Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "quiz": qz})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) performance(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	state, summary, err := s.svc.State(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	insights, err := s.svc.Insights(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":   id,
		"summary":  summary,
		"state":    state,
		"insights": insights,
	})
}

func (s *Server) quizzes(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	qs, err := s.svc.Quizzes(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": nonNil(qs)})
}

func (s *Server) history(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	attempts, err := s.svc.History(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": nonNil(attempts)})
}

func (s *Server) quiz(c *gin.Context) {
	quizID, ok := intParam(c, "quizID")
	if !ok {
		return
	}
	qz, questions, err := s.svc.QuizQuestions(c.Request.Context(), quizID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": qz, "questions": questions})
}

func (s *Server) adaptive(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req adaptiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	opts := recommend.NextOptions{Chapter: req.Chapter, Count: req.Count}
	if req.Difficulty != "" {
		d, err := adaptive.ParseDifficulty(req.Difficulty)
		if err != nil {
			badRequest(c, err)
			return
		}
		opts.Difficulty = &d
	}

	plan, err := s.svc.NextQuiz(c.Request.Context(), id, opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) submit(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	quizID, ok := intParam(c, "quizID")
	if !ok {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.svc.Submit(c.Request.Context(), id, quizID, req.Answers)
	if err != nil && (out == nil || out.Attempt == nil) {
		fail(c, err)
		return
	}
	body := gin.H{
		"attempt":      out.Attempt,
		"score":        out.Grading.Score,
		"correct":      out.Grading.Correct,
		"answered":     out.Grading.Answered,
		"responses":    out.Grading.Responses,
		"nextQuizPlan": out.Next,
	}
	if err != nil {
		// The attempt is stored; only the follow-up quiz is missing.
		body["error"] = err.Error()
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// fail maps service errors to HTTP statuses.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, recommend.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, adaptive.ErrInvalidBucket):
		status = http.StatusBadRequest
	case errors.Is(err, recommend.ErrEmptyBank):
		status = http.StatusServiceUnavailable
	}
	return status
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
