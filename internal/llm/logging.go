package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/quizadapt/internal/store"
)

// EventSink persists one row per model call.
type EventSink interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

type recording struct {
	inner    Provider
	provider string
	sink     EventSink
}

// WithLogging records every call to p, successful or not, in sink. A
// failure to record is reported on stderr and does not fail the call.
func WithLogging(p Provider, providerName string, sink EventSink) Provider {
	return &recording{inner: p, provider: providerName, sink: sink}
}

func (r *recording) ModelID() string { return r.inner.ModelID() }

func (r *recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	if serr := r.sink.AppendLLMRequest(context.WithoutCancel(ctx), ev); serr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record llm request: %v\n", serr)
	}
	return resp, err
}

// transcript renders a request as plain text for auditing.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
