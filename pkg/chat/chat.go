// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chat holds marketplace messaging sessions. Chat is independent of
// the zone/campaign ledger: it never touches pricing or escrow.
package chat

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrSameParticipant = errors.New("cannot open a chat with yourself")
)

// Message is a single chat message
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a conversation between two participants
type Session struct {
	ID              string    `json:"id"`
	Participants    [2]string `json:"participants"`
	Messages        []Message `json:"messages"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// Other returns the participant that is not userID
func (s *Session) Other(userID string) string {
	if s.Participants[0] == userID {
		return s.Participants[1]
	}
	return s.Participants[0]
}

// Store keeps chat sessions keyed by their participant pair
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session // key: sorted participant pair
}

// NewStore creates an empty chat store
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Send appends a message to the conversation between sender and recipient,
// creating the session on first contact.
func (st *Store) Send(senderID, recipientID, text string, now time.Time) (*Session, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == recipientID {
		return nil, ErrSameParticipant
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	key := pairKey(senderID, recipientID)
	sess, ok := st.sessions[key]
	if !ok {
		sess = &Session{
			ID:           uuid.NewString(),
			Participants: [2]string{senderID, recipientID},
		}
		st.sessions[key] = sess
	}

	sess.Messages = append(sess.Messages, Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: now,
	})
	sess.LastMessageTime = now

	return sess, nil
}

// SessionBetween returns the conversation for a participant pair, nil when
// none exists yet
func (st *Store) SessionBetween(a, b string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[pairKey(a, b)]
}

// SessionsFor returns a user's conversations, most recent activity first
func (st *Store) SessionsFor(userID string) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []*Session
	for _, sess := range st.sessions {
		if sess.Participants[0] == userID || sess.Participants[1] == userID {
			out = append(out, sess)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out
}

// All returns every session for snapshotting
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the store's sessions from a snapshot
func (st *Store) Restore(sessions []*Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.sessions = make(map[string]*Session, len(sessions))
	for _, sess := range sessions {
		st.sessions[pairKey(sess.Participants[0], sess.Participants[1])] = sess
	}
}
