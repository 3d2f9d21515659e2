package ocppj

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"central_system/ocpp"
)

const defaultCallTimeout = 30 * time.Second

// Transport is the capability a session needs from its connection. Receive
// suspends until a frame arrives or the transport fails; Close unblocks a
// pending Receive.
type Transport interface {
	Send(data []byte) error
	Receive() ([]byte, error)
	Close() error
}

type SessionState int

const (
	StateConnecting SessionState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (st SessionState) String() string {
	switch st {
	case StateConnecting:
		return "Connecting"
	case StateOpen:
		return "Open"
	case StateClosing:
		return "Closing"
	default:
		return "Closed"
	}
}

// Session owns one logical charge point connection: its identity, transport,
// the correlator and dispatcher bound to it, and the charge-point-scoped
// domain state (transactions, reservations, connector status).
//
// Inbound calls are handled strictly sequentially by the session's read loop.
// Outbound calls may be issued concurrently from any goroutine; their
// responses resolve independently, matched purely by message id.
type Session struct {
	identity   string
	transport  Transport
	schema     *SchemaRegistry
	correlator *Correlator
	dispatcher *Dispatcher
	log        *logrus.Entry

	stateMu     sync.Mutex
	state       SessionState
	registry    *Registry
	callTimeout time.Duration

	writeMu sync.Mutex

	mu                sync.Mutex
	nextTransactionId int
	transactions      map[int]*Transaction
	reservations      map[int]*Reservation
	connectors        map[int]*Connector
	status            string
	errorCode         string
}

func NewSession(identity string, transport Transport, schema *SchemaRegistry, logger *logrus.Logger) *Session {
	log := logger.WithField("client", identity)
	return &Session{
		identity:     identity,
		transport:    transport,
		schema:       schema,
		correlator:   NewCorrelator(log),
		dispatcher:   NewDispatcher(schema, log),
		callTimeout:  defaultCallTimeout,
		log:          log,
		state:        StateConnecting,
		transactions: map[int]*Transaction{},
		reservations: map[int]*Reservation{},
		connectors:   map[int]*Connector{},
	}
}

func (s *Session) ID() string {
	return s.identity
}

func (s *Session) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func (s *Session) Correlator() *Correlator {
	return s.correlator
}

func (s *Session) State() SessionState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// SetCallTimeout overrides the default response deadline for outbound calls.
// Safe to call while calls are in flight; in-flight calls keep the deadline
// they were issued with.
func (s *Session) SetCallTimeout(timeout time.Duration) {
	s.stateMu.Lock()
	s.callTimeout = timeout
	s.stateMu.Unlock()
}

func (s *Session) setRegistry(registry *Registry) {
	s.stateMu.Lock()
	s.registry = registry
	s.stateMu.Unlock()
}

// Run transitions the session to Open and pumps the inbound frame stream
// until the transport closes or fails. It blocks; callers run it on the
// session's own goroutine. A malformed frame is logged and discarded without
// closing the connection.
func (s *Session) Run() {
	s.stateMu.Lock()
	if s.state != StateConnecting {
		s.stateMu.Unlock()
		return
	}
	s.state = StateOpen
	s.stateMu.Unlock()
	for {
		data, err := s.transport.Receive()
		if err != nil {
			s.close(err)
			return
		}
		message, decodeErr := ParseMessage(data)
		if decodeErr != nil {
			s.log.Warnf("discarding inbound frame: %v", decodeErr)
			continue
		}
		switch m := message.(type) {
		case *Call:
			response := s.dispatcher.Dispatch(s, m)
			if err := s.send(response); err != nil {
				s.close(err)
				return
			}
		case *CallResult:
			s.correlator.ResolveResult(m.UniqueId, m.Payload)
		case *CallError:
			s.correlator.ResolveError(m.UniqueId, ocpp.NewError(m.ErrorCode, m.ErrorDescription, m.UniqueId))
		}
	}
}

// SendCall issues an outbound call and suspends the caller until the matching
// CallResult or CallError arrives, the per-call timeout fires, or ctx is
// cancelled. Cancellation releases the pending entry; a response arriving
// afterwards is dropped with a warning.
func (s *Session) SendCall(ctx context.Context, request ocpp.Request) (ocpp.Response, error) {
	s.stateMu.Lock()
	state := s.state
	callTimeout := s.callTimeout
	s.stateMu.Unlock()
	if state != StateOpen {
		return nil, fmt.Errorf("session %v is %v: %w", s.identity, state, ErrConnectionClosed)
	}
	action := request.GetFeatureName()
	if _, ok := s.schema.Feature(action); !ok {
		return nil, fmt.Errorf("action %v is not in any registered profile", action)
	}
	if messageValidation {
		if err := Validator.Struct(request); err != nil {
			return nil, fmt.Errorf("invalid %v request: %w", action, err)
		}
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal %v request: %w", action, err)
	}
	pending := s.correlator.register(action, callTimeout)
	call := &Call{UniqueId: pending.messageId, Action: action, Payload: payload}
	if err := s.send(call); err != nil {
		s.correlator.cancel(pending.messageId)
		return nil, err
	}
	select {
	case outcome := <-pending.outcome:
		if outcome.err != nil {
			return nil, outcome.err
		}
		return s.parseConfirmation(action, outcome.payload)
	case <-ctx.Done():
		s.correlator.cancel(pending.messageId)
		return nil, ctx.Err()
	}
}

func (s *Session) parseConfirmation(action string, payload json.RawMessage) (ocpp.Response, error) {
	if validationErr := s.schema.ValidateCallResult(action, payload); validationErr != nil {
		return nil, fmt.Errorf("invalid %v confirmation: %w", action, validationErr)
	}
	confirmation, ok := s.schema.NewConfirmation(action)
	if !ok {
		return nil, fmt.Errorf("no confirmation type for action %v", action)
	}
	if err := json.Unmarshal(payload, confirmation); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal %v confirmation: %w", action, err)
	}
	if messageValidation {
		if err := Validator.Struct(confirmation); err != nil {
			return nil, fmt.Errorf("invalid %v confirmation: %w", action, err)
		}
	}
	return confirmation, nil
}

// send serializes writes to the transport; the dispatcher path and concurrent
// SendCall callers share it.
func (s *Session) send(message Message) error {
	data, err := message.MarshalJSON()
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.transport.Send(data)
}

// Close tears the session down: pending calls resolve with
// ErrConnectionClosed, the transport is closed and the session is removed
// from its registry. Closing an already closed session is a no-op.
func (s *Session) Close() {
	s.close(nil)
}

func (s *Session) close(cause error) {
	s.stateMu.Lock()
	if s.state == StateClosing || s.state == StateClosed {
		s.stateMu.Unlock()
		return
	}
	s.state = StateClosing
	registry := s.registry
	s.stateMu.Unlock()

	if cause != nil {
		s.log.Infof("session closing: %v", cause)
	}
	s.correlator.FailAll(ErrConnectionClosed)
	if err := s.transport.Close(); err != nil {
		s.log.Debugf("transport close: %v", err)
	}

	s.stateMu.Lock()
	s.state = StateClosed
	s.stateMu.Unlock()
	if registry != nil {
		registry.unregister(s.identity, s)
	}
}
