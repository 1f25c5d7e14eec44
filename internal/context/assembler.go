package context

import (
	stdcontext "context"
	"fmt"

	"github.com/stupiduntilnot/smschat/internal/history"
)

// Assembler builds the ordered message sequence submitted upstream for one
// exchange. Given the same stored history and the same new user content the
// result is identical on every call.
type Assembler struct {
	Reader Reader

	// SystemPrompt, when non-empty, is prepended as a system message. It does
	// not count against MaxTurns and survives truncation.
	SystemPrompt string

	// MaxTurns bounds how many conversation messages are sent upstream.
	// Zero or negative disables truncation.
	MaxTurns int
}

// BuildContext reads the conversation's full history and returns it with the
// new user turn as the final element. When the stored history already ends
// with that exact user turn (the orchestrator persists the user turn before
// assembling) no duplicate is appended. Truncation drops from the oldest end
// first; the final user turn is always kept.
func (a *Assembler) BuildContext(ctx stdcontext.Context, conversationID, newUserContent string) ([]Message, error) {
	turns, err := a.Reader.ListTurns(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	messages := make([]Message, 0, len(turns)+2)
	for _, t := range turns {
		messages = append(messages, Message{Role: t.Role, Content: t.Content})
	}
	if !endsWith(messages, history.RoleUser, newUserContent) {
		messages = append(messages, Message{Role: history.RoleUser, Content: newUserContent})
	}

	messages = trimOldest(messages, a.MaxTurns)

	if a.SystemPrompt != "" {
		withSystem := make([]Message, 0, len(messages)+1)
		withSystem = append(withSystem, Message{Role: "system", Content: a.SystemPrompt})
		withSystem = append(withSystem, messages...)
		return withSystem, nil
	}
	return messages, nil
}

func endsWith(messages []Message, role, content string) bool {
	if len(messages) == 0 {
		return false
	}
	last := messages[len(messages)-1]
	return last.Role == role && last.Content == content
}

// trimOldest truncates messages to the most recent max entries.
func trimOldest(messages []Message, max int) []Message {
	if max <= 0 || len(messages) <= max {
		return messages
	}
	return messages[len(messages)-max:]
}
