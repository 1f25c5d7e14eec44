package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stupiduntilnot/smschat/internal/chat"
	"github.com/stupiduntilnot/smschat/internal/history"
)

//go:embed templates/*.html
var templateFS embed.FS

// conversationHeader carries the caller's phone number in the SMS-style
// browser; requests without it fall back to the configured default.
const conversationHeader = "SE-Phone-Number"

// Server exposes the chat over three routes: view, send, clear.
type Server struct {
	orch      *chat.Orchestrator
	store     history.Store
	defaultID string
	tmpl      *template.Template
	log       zerolog.Logger
}

// NewServer builds the HTTP surface around the orchestrator. The store is
// used read-only, for rendering the conversation view.
func NewServer(orch *chat.Orchestrator, store history.Store, defaultConversationID string, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		orch:      orch,
		store:     store,
		defaultID: defaultConversationID,
		tmpl:      tmpl,
		log:       log,
	}, nil
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("POST /clear", s.handleClear)
	return s.withRequestLog(mux)
}

// conversationID resolves which conversation a request belongs to.
func (s *Server) conversationID(r *http.Request) string {
	if id := r.Header.Get(conversationHeader); id != "" {
		return id
	}
	return s.defaultID
}

type turnView struct {
	Role    string
	Content string
	HTML    template.HTML
}

type pageView struct {
	Turns []turnView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	conversationID := s.conversationID(r)
	turns, err := s.store.ListTurns(r.Context(), conversationID)
	if err != nil {
		s.log.Error().Err(err).Str("conversation_id", conversationID).Msg("list turns failed")
		http.Error(w, "failed to load conversation", http.StatusInternalServerError)
		return
	}

	view := pageView{Turns: make([]turnView, 0, len(turns))}
	for _, t := range turns {
		tv := turnView{Role: t.Role, Content: t.Content}
		if t.Role == history.RoleAssistant {
			tv.HTML = renderMarkdown(t.Content)
		}
		view.Turns = append(view.Turns, tv)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "chat.html", view); err != nil {
		s.log.Error().Err(err).Msg("render chat page failed")
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	conversationID := s.conversationID(r)
	message := r.FormValue("message")

	_, err := s.orch.HandleMessage(r.Context(), conversationID, message)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, chat.ErrValidation):
		http.Error(w, "message must not be empty", http.StatusBadRequest)
	case errors.Is(err, chat.ErrUpstream):
		http.Error(w, "the assistant is unreachable, your message was saved", http.StatusBadGateway)
	default:
		http.Error(w, "failed to process message", http.StatusInternalServerError)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	conversationID := s.conversationID(r)
	if _, err := s.orch.ClearHistory(r.Context(), conversationID); err != nil {
		http.Error(w, "failed to clear conversation", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
