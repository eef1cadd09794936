// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/json"
	"errors"

	"github.com/luxfi/database"

	"github.com/adxyz/adinci/pkg/chat"
	"github.com/adxyz/adinci/pkg/core"
)

// Snapshot keys. Four independent records mirror the state layout of the
// mobile prototype: current user, zone list, rental-request list, user
// directory. Chats are stored alongside them.
var (
	keyCurrentUser = []byte("snapshot/current_user")
	keyZones       = []byte("snapshot/zones")
	keyRequests    = []byte("snapshot/requests")
	keyUsers       = []byte("snapshot/users")
	keyChats       = []byte("snapshot/chats")
)

func (s *Storage) putJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Put(key, data)
}

// getJSON loads a record into out. A missing key means empty state and
// reports found=false without an error.
func (s *Storage) getJSON(key []byte, out any) (found bool, err error) {
	data, err := s.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}

// SaveZones persists the full zone list
func (s *Storage) SaveZones(zones []*core.AdZone) error {
	return s.putJSON(keyZones, zones)
}

// LoadZones restores the zone list; nil when never saved
func (s *Storage) LoadZones() ([]*core.AdZone, error) {
	var zones []*core.AdZone
	if _, err := s.getJSON(keyZones, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// SaveUsers persists the full user directory
func (s *Storage) SaveUsers(users []*core.User) error {
	return s.putJSON(keyUsers, users)
}

// LoadUsers restores the user directory; nil when never saved
func (s *Storage) LoadUsers() ([]*core.User, error) {
	var users []*core.User
	if _, err := s.getJSON(keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SaveRequests persists the full rental-request list
func (s *Storage) SaveRequests(reqs []*core.AdRentalRequest) error {
	return s.putJSON(keyRequests, reqs)
}

// LoadRequests restores the rental-request list; nil when never saved
func (s *Storage) LoadRequests() ([]*core.AdRentalRequest, error) {
	var reqs []*core.AdRentalRequest
	if _, err := s.getJSON(keyRequests, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// SaveCurrentUser records the logged-in user id
func (s *Storage) SaveCurrentUser(userID string) error {
	return s.putJSON(keyCurrentUser, userID)
}

// LoadCurrentUser returns the logged-in user id, empty when logged out
func (s *Storage) LoadCurrentUser() (string, error) {
	var id string
	if _, err := s.getJSON(keyCurrentUser, &id); err != nil {
		return "", err
	}
	return id, nil
}

// ClearCurrentUser removes the logged-in record entirely (logout)
func (s *Storage) ClearCurrentUser() error {
	err := s.db.Delete(keyCurrentUser)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// SaveChats persists all chat sessions
func (s *Storage) SaveChats(sessions []*chat.Session) error {
	return s.putJSON(keyChats, sessions)
}

// LoadChats restores chat sessions; nil when never saved
func (s *Storage) LoadChats() ([]*chat.Session, error) {
	var sessions []*chat.Session
	if _, err := s.getJSON(keyChats, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
