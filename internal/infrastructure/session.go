package infrastructure

import (
	"sync"
	"time"
)

// ReplySession is the pending reply target of one administrator
type ReplySession struct {
	AdminID      int64
	TargetUserID int64
	OpenedAt     time.Time
}

// ReplySessionStore keeps pending reply sessions in memory.
// A new Set overwrites the previous session of the same admin (last write wins).
type ReplySessionStore struct {
	sessions map[int64]ReplySession
	ttl      time.Duration // 0 = sessions never expire
	now      func() time.Time
	mu       sync.Mutex
}

func NewReplySessionStore(ttl time.Duration) *ReplySessionStore {
	return &ReplySessionStore{
		sessions: make(map[int64]ReplySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Set opens (or replaces) the session for adminID
func (s *ReplySessionStore) Set(adminID, targetUserID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[adminID] = ReplySession{
		AdminID:      adminID,
		TargetUserID: targetUserID,
		OpenedAt:     s.now(),
	}
}

// Get returns the pending target for adminID. Expired sessions are evicted.
func (s *ReplySessionStore) Get(adminID int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[adminID]
	if !exists {
		return 0, false
	}
	if s.expired(session) {
		delete(s.sessions, adminID)
		return 0, false
	}
	return session.TargetUserID, true
}

func (s *ReplySessionStore) Clear(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, adminID)
}

// Len returns the number of live sessions
func (s *ReplySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, session := range s.sessions {
		if !s.expired(session) {
			n++
		}
	}
	return n
}

func (s *ReplySessionStore) expired(session ReplySession) bool {
	return s.ttl > 0 && s.now().Sub(session.OpenedAt) > s.ttl
}
