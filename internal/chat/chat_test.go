package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	ctxpkg "github.com/stupiduntilnot/smschat/internal/context"
	"github.com/stupiduntilnot/smschat/internal/history"
	"github.com/stupiduntilnot/smschat/internal/model"
)

type memStore struct {
	turns     map[string][]history.Turn
	appendErr error
	clearErr  error
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{turns: map[string][]history.Turn{}}
}

func (m *memStore) Append(_ context.Context, conversationID, role, content string) (history.Turn, error) {
	if m.appendErr != nil {
		return history.Turn{}, m.appendErr
	}
	m.nextID++
	t := history.Turn{
		ID:             m.nextID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	m.turns[conversationID] = append(m.turns[conversationID], t)
	return t, nil
}

func (m *memStore) ListTurns(_ context.Context, conversationID string) ([]history.Turn, error) {
	return m.turns[conversationID], nil
}

func (m *memStore) Clear(_ context.Context, conversationID string) (int64, error) {
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	n := int64(len(m.turns[conversationID]))
	delete(m.turns, conversationID)
	return n, nil
}

type stubCompleter struct {
	reply    string
	err      error
	called   int
	received []ctxpkg.Message
}

func (s *stubCompleter) ChatCompletion(_ context.Context, messages []ctxpkg.Message) (model.CompletionResponse, error) {
	s.called++
	s.received = messages
	if s.err != nil {
		return model.CompletionResponse{}, s.err
	}
	return model.CompletionResponse{Content: s.reply}, nil
}

func newOrchestrator(store history.Store, completer model.Completer) *Orchestrator {
	assembler := &ctxpkg.Assembler{Reader: store}
	return NewOrchestrator(store, assembler, completer, zerolog.Nop())
}

func TestHandleMessage_Success(t *testing.T) {
	store := newMemStore()
	completer := &stubCompleter{reply: "Hello!"}
	orch := newOrchestrator(store, completer)

	reply, err := orch.HandleMessage(context.Background(), "c1", "Hi")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Hello!" {
		t.Errorf("unexpected reply %q", reply)
	}

	turns := store.turns["c1"]
	if len(turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(turns))
	}
	if turns[0].Role != history.RoleUser || turns[0].Content != "Hi" {
		t.Errorf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != history.RoleAssistant || turns[1].Content != "Hello!" {
		t.Errorf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestHandleMessage_ContextEndsWithUserTurnOnce(t *testing.T) {
	store := newMemStore()
	store.Append(context.Background(), "c1", history.RoleUser, "earlier")
	store.Append(context.Background(), "c1", history.RoleAssistant, "earlier reply")
	completer := &stubCompleter{reply: "ok"}
	orch := newOrchestrator(store, completer)

	if _, err := orch.HandleMessage(context.Background(), "c1", "ping"); err != nil {
		t.Fatal(err)
	}

	if len(completer.received) != 3 {
		t.Fatalf("expected 3 context messages, got %d: %+v", len(completer.received), completer.received)
	}
	last := completer.received[len(completer.received)-1]
	if last.Role != history.RoleUser || last.Content != "ping" {
		t.Errorf("unexpected final context message: %+v", last)
	}
}

func TestHandleMessage_EmptyInput(t *testing.T) {
	store := newMemStore()
	completer := &stubCompleter{reply: "never"}
	orch := newOrchestrator(store, completer)

	_, err := orch.HandleMessage(context.Background(), "c1", "   ")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if completer.called != 0 {
		t.Error("completer must not be called for invalid input")
	}
	if len(store.turns["c1"]) != 0 {
		t.Errorf("expected no persisted turns, got %d", len(store.turns["c1"]))
	}
}

func TestHandleMessage_UpstreamFailureKeepsUserTurn(t *testing.T) {
	store := newMemStore()
	completer := &stubCompleter{err: errors.New("timeout")}
	orch := newOrchestrator(store, completer)

	_, err := orch.HandleMessage(context.Background(), "c1", "ping")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	turns := store.turns["c1"]
	if len(turns) != 1 {
		t.Fatalf("expected only the user turn, got %d turns", len(turns))
	}
	if turns[0].Role != history.RoleUser || turns[0].Content != "ping" {
		t.Errorf("unexpected surviving turn: %+v", turns[0])
	}
}

func TestHandleMessage_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.appendErr = errors.New("disk full")
	completer := &stubCompleter{reply: "never"}
	orch := newOrchestrator(store, completer)

	_, err := orch.HandleMessage(context.Background(), "c1", "Hi")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if completer.called != 0 {
		t.Error("completer must not be called when persistence fails")
	}
}

func TestClearHistory(t *testing.T) {
	store := newMemStore()
	orch := newOrchestrator(store, &stubCompleter{reply: "ok"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		orch.HandleMessage(ctx, "c1", "msg")
	}

	count, err := orch.ClearHistory(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 10 {
		t.Fatalf("expected 10 deleted, got %d", count)
	}

	count, err = orch.ClearHistory(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("expected 0 deleted on second clear, got %d", count)
	}
}

func TestClearHistory_StorageFailure(t *testing.T) {
	store := newMemStore()
	store.clearErr = errors.New("locked")
	orch := newOrchestrator(store, &stubCompleter{})

	if _, err := orch.ClearHistory(context.Background(), "c1"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
