package handlers

import (
	"image"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cristianadrielbraun/qrstudio/internal/generator"
)

const sessionCookie = "qrstudio_session"

// session is the per-browser state: its own coordinator, so single-flight
// applies per user, plus the uploaded overlay images.
type session struct {
	id    string
	coord *generator.Coordinator

	mu         sync.Mutex
	logo       image.Image
	background image.Image
	latest     *generator.Result
	lastSeen   time.Time
}

func (s *session) images() (logo, background image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logo, s.background
}

func (s *session) setImage(kind string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case "logo":
		s.logo = img
	case "background":
		s.background = img
	}
}

func (s *session) setLatest(r generator.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &r
}

func (s *session) latestResult() *generator.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Sessions maps cookie ids to sessions and evicts idle ones.
type Sessions struct {
	newCoordinator func() *generator.Coordinator
	idle           time.Duration
	now            func() time.Time

	mu sync.Mutex
	m  map[string]*session
}

// NewSessions returns an empty registry. idle <= 0 disables eviction.
func NewSessions(newCoordinator func() *generator.Coordinator, idle time.Duration) *Sessions {
	return &Sessions{
		newCoordinator: newCoordinator,
		idle:           idle,
		now:            time.Now,
		m:              map[string]*session{},
	}
}

// get returns the session for id, creating it on first use.
func (s *Sessions) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		sess = &session{id: id, coord: s.newCoordinator()}
		s.m[id] = sess
	}
	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sweep drops sessions idle for longer than the idle timeout, cancelling
// their pending regenerations. It returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.m {
		sess.mu.Lock()
		stale := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if stale {
			sess.coord.Cancel()
			delete(s.m, id)
			n++
		}
	}
	return n
}

// session resolves the caller's session from its cookie, issuing a new id
// when the cookie is missing or malformed.
func (h *Handler) session(c *gin.Context) *session {
	id, err := c.Cookie(sessionCookie)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	}
	return h.sessions.get(id)
}
