package ocppj

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"central_system/ocpp16/core"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	registry := NewRegistry(testLogger())
	session := newTestSession(t, "cp001")
	registry.Register(session)

	found, ok := registry.Lookup("cp001")
	require.True(t, ok)
	assert.Same(t, session, found)
	assert.Equal(t, 1, registry.Count())
	assert.ElementsMatch(t, []string{"cp001"}, registry.Identities())

	_, ok = registry.Lookup("cp999")
	assert.False(t, ok)
}

func TestRegistry_ReconnectDisplacesOldSession(t *testing.T) {
	registry := NewRegistry(testLogger())
	old, transport := runTestSession(t, "cp001")
	registry.Register(old)

	// A call pending on the old session when the charge point reconnects.
	pendingErr := make(chan error, 1)
	go func() {
		_, err := old.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
		pendingErr <- err
	}()
	transport.nextFrame(t)

	replacement := newTestSession(t, "cp001")
	registry.Register(replacement)

	assert.ErrorIs(t, <-pendingErr, ErrConnectionClosed)
	require.Eventually(t, func() bool { return old.State() == StateClosed },
		time.Second, 5*time.Millisecond)

	found, ok := registry.Lookup("cp001")
	require.True(t, ok)
	assert.Same(t, replacement, found)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_ConcurrentRegisterLeavesOneOpenSession(t *testing.T) {
	registry := NewRegistry(testLogger())

	// Racing registrations for the same identity must resolve to exactly one
	// registered session with every loser displaced and closed.
	const contenders = 16
	sessions := make([]*Session, contenders)
	var wg sync.WaitGroup
	for i := range sessions {
		sessions[i], _ = runTestSession(t, "cp001")
		wg.Add(1)
		go func(session *Session) {
			defer wg.Done()
			registry.Register(session)
		}(sessions[i])
	}
	wg.Wait()

	winner, ok := registry.Lookup("cp001")
	require.True(t, ok)
	assert.Equal(t, 1, registry.Count())
	for _, session := range sessions {
		if session == winner {
			continue
		}
		require.Eventually(t, func() bool { return session.State() == StateClosed },
			time.Second, 5*time.Millisecond, "displaced session still open")
	}
	assert.Equal(t, StateOpen, winner.State())
}

func TestRegistry_CloseRemovesSession(t *testing.T) {
	registry := NewRegistry(testLogger())
	session := newTestSession(t, "cp001")
	registry.Register(session)

	session.Close()
	_, ok := registry.Lookup("cp001")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistry_StaleCloseKeepsNewSession(t *testing.T) {
	registry := NewRegistry(testLogger())
	old := newTestSession(t, "cp001")
	registry.Register(old)

	replacement := newTestSession(t, "cp001")
	registry.Register(replacement)

	// The displaced session closing again must not evict its replacement.
	old.Close()
	found, ok := registry.Lookup("cp001")
	require.True(t, ok)
	assert.Same(t, replacement, found)
}
