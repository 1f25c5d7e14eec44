package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	ctxpkg "github.com/stupiduntilnot/smschat/internal/context"
	"github.com/stupiduntilnot/smschat/internal/history"
	"github.com/stupiduntilnot/smschat/internal/model"
)

// Orchestrator coordinates one exchange: persist the user turn, assemble
// context, call the completion provider, persist the assistant turn.
type Orchestrator struct {
	store     history.Store
	assembler *ctxpkg.Assembler
	completer model.Completer
	log       zerolog.Logger
}

// NewOrchestrator wires the orchestrator's collaborators. The store handle is
// owned by the caller and shared with the assembler's reader.
func NewOrchestrator(store history.Store, assembler *ctxpkg.Assembler, completer model.Completer, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		assembler: assembler,
		completer: completer,
		log:       log,
	}
}

// HandleMessage runs a full user exchange and returns the assistant reply.
// The user turn is persisted before the upstream call; if that call fails the
// user turn stays with no reply and ErrUpstream is returned.
func (o *Orchestrator) HandleMessage(ctx context.Context, conversationID, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("%w: empty message", ErrValidation)
	}

	if _, err := o.store.Append(ctx, conversationID, history.RoleUser, userText); err != nil {
		return "", fmt.Errorf("%w: persist user turn: %v", ErrStorage, err)
	}

	messages, err := o.assembler.BuildContext(ctx, conversationID, userText)
	if err != nil {
		return "", fmt.Errorf("%w: build context: %v", ErrStorage, err)
	}

	resp, err := o.completer.ChatCompletion(ctx, messages)
	if err != nil {
		o.log.Warn().
			Err(err).
			Str("conversation_id", conversationID).
			Msg("completion failed")
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := o.store.Append(ctx, conversationID, history.RoleAssistant, resp.Content); err != nil {
		return "", fmt.Errorf("%w: persist assistant turn: %v", ErrStorage, err)
	}

	o.log.Info().
		Str("conversation_id", conversationID).
		Int("context_messages", len(messages)).
		Int("input_tokens", resp.InputTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("exchange completed")
	return resp.Content, nil
}

// ClearHistory deletes the conversation's entire turn log and returns the
// number of turns removed. Clearing an empty conversation returns zero.
func (o *Orchestrator) ClearHistory(ctx context.Context, conversationID string) (int64, error) {
	count, err := o.store.Clear(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("%w: clear history: %v", ErrStorage, err)
	}
	o.log.Info().
		Str("conversation_id", conversationID).
		Int64("deleted", count).
		Msg("history cleared")
	return count, nil
}
