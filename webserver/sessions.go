package webserver

import (
	"sync"

	"github.com/malonaz/carscout/internal/conversation"
	"github.com/malonaz/carscout/internal/view"
)

// chatSession is one chat page kept between requests.
type chatSession struct {
	controller *conversation.Controller

	mu sync.Mutex
	// results of the latest reply, shown until the next message.
	results *view.ResultsOverlay
}

func (c *chatSession) setResults(results *view.ResultsOverlay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = results
}

func (c *chatSession) latestResults() *view.ResultsOverlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// sessionStore keeps chat sessions by id, dropping the least recently used past max.
type sessionStore struct {
	mu       sync.Mutex
	max      int
	sessions map[string]*chatSession
	// order lists session ids, least recently used first.
	order []string
}

func newSessionStore(max int) *sessionStore {
	if max <= 0 {
		max = 1
	}
	return &sessionStore{max: max, sessions: map[string]*chatSession{}}
}

func (s *sessionStore) get(id string) (*chatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if ok {
		s.touch(id)
	}
	return session, ok
}

func (s *sessionStore) put(id string, session *chatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.order = append(s.order, id)
	} else {
		s.touch(id)
	}
	s.sessions[id] = session
	for len(s.order) > s.max {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, evicted)
		log.Info("evicted chat session", "session_id", evicted)
	}
}

// rename moves a session to a new id after a new chat.
func (s *sessionStore) rename(oldID, newID string) {
	s.mu.Lock()
	session, ok := s.sessions[oldID]
	if ok {
		delete(s.sessions, oldID)
		s.remove(oldID)
	}
	s.mu.Unlock()
	if ok {
		s.put(newID, session)
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) touch(id string) {
	s.remove(id)
	s.order = append(s.order, id)
}

func (s *sessionStore) remove(id string) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
