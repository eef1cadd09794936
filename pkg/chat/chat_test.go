// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	require := require.New(t)
	st := NewStore()
	now := time.Now()

	sess, err := st.Send("u-adv-1", "u-owner-1", "Is the plaza free in March?", now)
	require.NoError(err)
	require.NotEmpty(sess.ID)
	require.Len(sess.Messages, 1)
	require.Equal("u-adv-1", sess.Messages[0].SenderID)
	require.Equal(now, sess.LastMessageTime)
}

func TestSendValidation(t *testing.T) {
	require := require.New(t)
	st := NewStore()

	_, err := st.Send("u-adv-1", "u-owner-1", "", time.Now())
	require.ErrorIs(err, ErrEmptyMessage)

	_, err = st.Send("u-adv-1", "u-adv-1", "hi", time.Now())
	require.ErrorIs(err, ErrSameParticipant)
}

func TestSendReusesSessionBothDirections(t *testing.T) {
	require := require.New(t)
	st := NewStore()
	now := time.Now()

	first, err := st.Send("u-adv-1", "u-owner-1", "Is the plaza free in March?", now)
	require.NoError(err)

	// The reply lands in the same session regardless of direction
	reply, err := st.Send("u-owner-1", "u-adv-1", "Yes, from the 10th.", now.Add(time.Minute))
	require.NoError(err)
	require.Equal(first.ID, reply.ID)
	require.Len(reply.Messages, 2)
	require.Equal(now.Add(time.Minute), reply.LastMessageTime)
}

func TestSessionBetween(t *testing.T) {
	require := require.New(t)
	st := NewStore()

	require.Nil(st.SessionBetween("u-adv-1", "u-owner-1"))

	sent, err := st.Send("u-adv-1", "u-owner-1", "hello", time.Now())
	require.NoError(err)
	require.Equal(sent.ID, st.SessionBetween("u-owner-1", "u-adv-1").ID)
}

func TestSessionsForOrdering(t *testing.T) {
	require := require.New(t)
	st := NewStore()
	now := time.Now()

	old, err := st.Send("u-adv-1", "u-owner-1", "first", now)
	require.NoError(err)
	recent, err := st.Send("u-adv-1", "u-owner-2", "second", now.Add(time.Hour))
	require.NoError(err)

	sessions := st.SessionsFor("u-adv-1")
	require.Len(sessions, 2)
	require.Equal(recent.ID, sessions[0].ID)
	require.Equal(old.ID, sessions[1].ID)

	require.Len(st.SessionsFor("u-owner-2"), 1)
	require.Empty(st.SessionsFor("u-stranger"))
}

func TestOther(t *testing.T) {
	require := require.New(t)
	st := NewStore()

	sess, err := st.Send("u-adv-1", "u-owner-1", "hi", time.Now())
	require.NoError(err)
	require.Equal("u-owner-1", sess.Other("u-adv-1"))
	require.Equal("u-adv-1", sess.Other("u-owner-1"))
}

func TestRestore(t *testing.T) {
	require := require.New(t)
	st := NewStore()
	now := time.Now()

	_, err := st.Send("u-adv-1", "u-owner-1", "hi", now)
	require.NoError(err)
	_, err = st.Send("u-reg-1", "u-owner-1", "hey", now)
	require.NoError(err)

	st2 := NewStore()
	st2.Restore(st.All())

	require.Len(st2.All(), 2)
	sess := st2.SessionBetween("u-owner-1", "u-adv-1")
	require.NotNil(sess)
	require.Len(sess.Messages, 1)

	// Restored sessions keep accepting messages
	more, err := st2.Send("u-owner-1", "u-adv-1", "welcome back", now.Add(time.Minute))
	require.NoError(err)
	require.Len(more.Messages, 2)
}
