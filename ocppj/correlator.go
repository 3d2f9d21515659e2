package ocppj

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCallTimeout resolves a pending call whose response never arrived
	// within the deadline.
	ErrCallTimeout = errors.New("call timed out waiting for response")
	// ErrConnectionClosed resolves every pending call of a session whose
	// transport is gone or which was displaced by a reconnect.
	ErrConnectionClosed = errors.New("connection closed")
)

type callOutcome struct {
	payload json.RawMessage
	err     error
}

// pendingCall is the bookkeeping for one outbound call awaiting its response.
// Owned exclusively by the correlator of the connection that created it.
type pendingCall struct {
	messageId string
	action    string
	createdAt time.Time
	outcome   chan callOutcome
	timer     *time.Timer
}

// Correlator tracks the pending outbound calls of one connection: it issues
// unique message ids, matches inbound CallResult/CallError frames to their
// callers and enforces per-call response timeouts.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]*pendingCall
	log     *logrus.Entry
}

func NewCorrelator(log *logrus.Entry) *Correlator {
	return &Correlator{
		pending: map[string]*pendingCall{},
		log:     log,
	}
}

// register creates a pending entry under a fresh message id, guaranteed
// unused among the calls currently pending on this connection, and arms its
// timeout timer.
func (c *Correlator) register(action string, timeout time.Duration) *pendingCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var messageId string
	for {
		messageId = uuid.NewString()
		if _, taken := c.pending[messageId]; !taken {
			break
		}
	}
	call := &pendingCall{
		messageId: messageId,
		action:    action,
		createdAt: time.Now(),
		outcome:   make(chan callOutcome, 1),
	}
	call.timer = time.AfterFunc(timeout, func() {
		if c.resolve(messageId, callOutcome{err: ErrCallTimeout}) {
			c.log.WithFields(logrus.Fields{"messageId": messageId, "message": action}).Warn("call timed out")
		}
	})
	c.pending[messageId] = call
	return call
}

// resolve delivers an outcome to the caller suspended on messageId and
// removes the entry. A late or duplicate response finds no entry and is
// dropped with a warning; that is not an error to the rest of the system.
func (c *Correlator) resolve(messageId string, outcome callOutcome) bool {
	c.mu.Lock()
	call, ok := c.pending[messageId]
	if ok {
		delete(c.pending, messageId)
		call.timer.Stop()
	}
	c.mu.Unlock()
	if !ok {
		c.log.WithField("messageId", messageId).Warn("dropping response for unknown or expired call")
		return false
	}
	call.outcome <- outcome
	return true
}

// ResolveResult routes an inbound CallResult payload to its caller.
func (c *Correlator) ResolveResult(messageId string, payload json.RawMessage) bool {
	return c.resolve(messageId, callOutcome{payload: payload})
}

// ResolveError routes an inbound CallError to its caller as an error.
func (c *Correlator) ResolveError(messageId string, err error) bool {
	return c.resolve(messageId, callOutcome{err: err})
}

// cancel releases a pending entry without waking the caller. Used when the
// caller itself gives up (context cancellation, failed send).
func (c *Correlator) cancel(messageId string) {
	c.mu.Lock()
	if call, ok := c.pending[messageId]; ok {
		delete(c.pending, messageId)
		call.timer.Stop()
	}
	c.mu.Unlock()
}

// FailAll resolves every pending call with err. Called once the owning
// session enters the Closing state; partial responses cannot be trusted once
// the transport is gone, so nothing drains.
func (c *Correlator) FailAll(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = map[string]*pendingCall{}
	c.mu.Unlock()
	for _, call := range pending {
		call.timer.Stop()
		call.outcome <- callOutcome{err: err}
	}
}

// PendingCount reports how many outbound calls are awaiting a response.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
