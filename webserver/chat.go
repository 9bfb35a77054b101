package webserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/malonaz/carscout/internal/conversation"
	"github.com/malonaz/carscout/internal/view"
)

// ChatPage is the data of the chat page.
type ChatPage struct {
	Title        string
	SessionID    string
	Turns        []view.Turn
	QuickActions []string
	Results      *view.ResultsOverlay
	// Notice is shown above the input, e.g. after a failed session start.
	Notice string
}

func (s *Server) handleChatStart(w http.ResponseWriter, r *http.Request) {
	controller := conversation.New(s.client, conversation.WithFollowUpDelay(0))
	reply := controller.Start(r.Context())
	session := &chatSession{controller: controller}
	s.sessions.put(reply.SessionID, session)
	s.renderChat(w, http.StatusOK, session, notice(reply.Err))
}

// noticeParam flags a redirect whose session started with the fallback greeting.
const noticeParam = "unavailable"

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}
	var message string
	if r.URL.Query().Has(noticeParam) {
		message = unavailableNotice
	}
	s.renderChat(w, http.StatusOK, session, message)
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.get(chi.URLParam(r, "sessionID"))
	if !ok {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	reply, err := session.controller.Send(r.Context(), r.FormValue("message"))
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		s.renderChat(w, http.StatusOK, session, "")
		return
	case errors.Is(err, conversation.ErrBusy):
		s.renderChat(w, http.StatusConflict, session, "Please wait for the assistant to reply.")
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// The page is rendered in full, so deferred actions are applied right away.
	for _, deferred := range reply.Deferred {
		session.controller.Deliver(deferred)
	}
	if !reply.Stale {
		session.setResults(reply.Results)
	}
	s.renderChat(w, http.StatusOK, session, "")
}

func (s *Server) handleChatNew(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, ok := s.sessions.get(sessionID)
	if !ok {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	reply := session.controller.NewChat(r.Context())
	session.setResults(nil)
	s.sessions.rename(sessionID, reply.SessionID)
	location := "/chat/" + reply.SessionID
	if reply.Err != nil {
		location += "?" + noticeParam
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (s *Server) renderChat(w http.ResponseWriter, status int, session *chatSession, notice string) {
	controller := session.controller
	page := &ChatPage{
		Title:     "Car Buying Assistant",
		SessionID: controller.SessionID(),
		Turns:     controller.Transcript(),
		Results:   session.latestResults(),
		Notice:    notice,
	}
	if controller.QuickActionsVisible() {
		page.QuickActions = s.config.Chat.QuickActions
	}
	s.render(w, status, "chat", page)
}

const unavailableNotice = "The assistant is unavailable right now, some answers may fail."

func notice(err error) string {
	if err == nil {
		return ""
	}
	return unavailableNotice
}
