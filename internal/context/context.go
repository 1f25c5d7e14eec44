package context

import (
	stdcontext "context"

	"github.com/stupiduntilnot/smschat/internal/history"
)

// Reader retrieves stored conversation history. history.Store satisfies it.
type Reader interface {
	ListTurns(ctx stdcontext.Context, conversationID string) ([]history.Turn, error)
}
