package model

import (
	stdcontext "context"

	ctxpkg "github.com/stupiduntilnot/smschat/internal/context"
)

// CompletionResponse is the common response model for completion providers.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
}

// Completer is the completion provider abstraction used by the orchestrator.
type Completer interface {
	ChatCompletion(ctx stdcontext.Context, messages []ctxpkg.Message) (CompletionResponse, error)
}
