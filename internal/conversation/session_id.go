package conversation

import (
	"strings"

	"github.com/google/uuid"
	"github.com/scylladb/go-set/strset"
)

const (
	sessionIDPrefix = "user_"
	sessionIDLength = 9
)

// sessionIDs issues session identifiers that never repeat within one controller.
type sessionIDs struct {
	generate func() string
	issued   *strset.Set
}

func newSessionIDs(generate func() string) *sessionIDs {
	if generate == nil {
		generate = randomSessionID
	}
	return &sessionIDs{generate: generate, issued: strset.New()}
}

// next returns an identifier distinct from all previously issued ones.
func (s *sessionIDs) next() string {
	for {
		id := s.generate()
		if !s.issued.Has(id) {
			s.issued.Add(id)
			return id
		}
	}
}

func randomSessionID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return sessionIDPrefix + random[:sessionIDLength]
}
