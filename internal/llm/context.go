package llm

import "context"

// Purposes recorded on llm events.
const (
	PurposeQuestionGen = "question-gen"
	PurposeUnknown     = "unknown"
)

type purposeKey struct{}

// WithPurpose labels every request made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
