package ocppj

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"central_system/ocpp"
	"central_system/ocpp16/core"
	"central_system/ocpp16/reservation"
	"central_system/ocpp16/types"
)

// fakeTransport is an in-memory Transport: frames pushed on inbound come out
// of Receive, frames passed to Send land on outbound.
type fakeTransport struct {
	inbound   chan []byte
	outbound  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound:  make(chan []byte, 16),
		outbound: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (t *fakeTransport) Send(data []byte) error {
	select {
	case t.outbound <- data:
		return nil
	case <-t.closed:
		return errors.New("transport closed")
	}
}

func (t *fakeTransport) Receive() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.closed:
		return nil, errors.New("transport closed")
	}
}

func (t *fakeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) nextFrame(test *testing.T) Message {
	test.Helper()
	select {
	case data := <-t.outbound:
		message, decodeErr := ParseMessage(data)
		require.Nil(test, decodeErr)
		return message
	case <-time.After(2 * time.Second):
		test.Fatal("no outbound frame")
		return nil
	}
}

func newTestSession(t *testing.T, identity string) *Session {
	t.Helper()
	schema := NewSchemaRegistry(core.Profile, reservation.Profile)
	session := NewSession(identity, newFakeTransport(), schema, testLogger())
	t.Cleanup(session.Close)
	return session
}

func runTestSession(t *testing.T, identity string) (*Session, *fakeTransport) {
	t.Helper()
	transport := newFakeTransport()
	schema := NewSchemaRegistry(core.Profile, reservation.Profile)
	session := NewSession(identity, transport, schema, testLogger())
	go session.Run()
	require.Eventually(t, func() bool { return session.State() == StateOpen },
		time.Second, 5*time.Millisecond)
	t.Cleanup(session.Close)
	return session, transport
}

func TestSession_StateTransitions(t *testing.T) {
	transport := newFakeTransport()
	schema := NewSchemaRegistry(core.Profile)
	session := NewSession("cp001", transport, schema, testLogger())
	assert.Equal(t, StateConnecting, session.State())

	go session.Run()
	require.Eventually(t, func() bool { return session.State() == StateOpen },
		time.Second, 5*time.Millisecond)

	session.Close()
	assert.Equal(t, StateClosed, session.State())
	// Close is idempotent.
	session.Close()
	assert.Equal(t, StateClosed, session.State())
}

func TestSession_AnswersInboundCall(t *testing.T) {
	session, transport := runTestSession(t, "cp001")
	session.Dispatcher().Register(core.HeartbeatFeatureName, func(s *Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return core.NewHeartbeatConfirmation(types.NewDateTime(time.Now())), nil
	})

	transport.inbound <- []byte(`[2,"hb-1","Heartbeat",{}]`)
	message := transport.nextFrame(t)
	result, ok := message.(*CallResult)
	require.True(t, ok)
	assert.Equal(t, "hb-1", result.UniqueId)
}

func TestSession_SurvivesMalformedFrame(t *testing.T) {
	session, transport := runTestSession(t, "cp001")
	session.Dispatcher().Register(core.HeartbeatFeatureName, func(s *Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return core.NewHeartbeatConfirmation(types.NewDateTime(time.Now())), nil
	})

	transport.inbound <- []byte(`this is not ocpp`)
	transport.inbound <- []byte(`[2,"x-1","GetCompositeSchedule",{}]`)
	message := transport.nextFrame(t)
	callError, ok := message.(*CallError)
	require.True(t, ok)
	assert.Equal(t, ocpp.NotImplemented, callError.ErrorCode)

	// The session is still open and handling traffic.
	transport.inbound <- []byte(`[2,"hb-1","Heartbeat",{}]`)
	message = transport.nextFrame(t)
	_, ok = message.(*CallResult)
	require.True(t, ok)
	assert.Equal(t, StateOpen, session.State())
}

func TestSession_SendCall(t *testing.T) {
	session, transport := runTestSession(t, "cp001")

	go func() {
		message := transport.nextFrame(t)
		call := message.(*Call)
		payload, _ := json.Marshal(core.ResetConfirmation{Status: core.ResetStatusAccepted})
		frame, _ := (&CallResult{UniqueId: call.UniqueId, Payload: payload}).MarshalJSON()
		transport.inbound <- frame
	}()

	response, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
	require.NoError(t, err)
	confirmation, ok := response.(*core.ResetConfirmation)
	require.True(t, ok)
	assert.Equal(t, core.ResetStatusAccepted, confirmation.Status)
	assert.Equal(t, 0, session.Correlator().PendingCount())
}

func TestSession_SendCallReceivesCallError(t *testing.T) {
	session, transport := runTestSession(t, "cp001")

	go func() {
		message := transport.nextFrame(t)
		frame, _ := (&CallError{
			UniqueId:         message.GetUniqueId(),
			ErrorCode:        ocpp.NotSupported,
			ErrorDescription: "reset not supported",
		}).MarshalJSON()
		transport.inbound <- frame
	}()

	_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeHard})
	require.Error(t, err)
	var protocolErr *ocpp.Error
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, ocpp.NotSupported, protocolErr.Code)
}

func TestSession_SendCallTimesOut(t *testing.T) {
	session, transport := runTestSession(t, "cp001")
	session.SetCallTimeout(20 * time.Millisecond)

	_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
	assert.ErrorIs(t, err, ErrCallTimeout)
	// Drain the call frame the session sent.
	transport.nextFrame(t)

	// A response arriving after the timeout is dropped without effect.
	transport.inbound <- []byte(`[3,"whatever",{"status":"Accepted"}]`)
	assert.Equal(t, 0, session.Correlator().PendingCount())
}

func TestSession_SetCallTimeoutDuringTraffic(t *testing.T) {
	session, transport := runTestSession(t, "cp001")
	session.SetCallTimeout(time.Second)

	// Answer every outbound call while the timeout is being retuned.
	go func() {
		for {
			select {
			case data := <-transport.outbound:
				call, decodeErr := ParseMessage(data)
				if decodeErr != nil {
					return
				}
				payload, _ := json.Marshal(core.ResetConfirmation{Status: core.ResetStatusAccepted})
				frame, _ := (&CallResult{UniqueId: call.GetUniqueId(), Payload: payload}).MarshalJSON()
				transport.inbound <- frame
			case <-transport.closed:
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			session.SetCallTimeout(time.Duration(i+1) * time.Second)
		}
	}()
	for i := 0; i < 20; i++ {
		_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
		require.NoError(t, err)
	}
	<-done
}

func TestSession_SendCallContextCancelled(t *testing.T) {
	session, _ := runTestSession(t, "cp001")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := session.SendCall(ctx, &core.ResetRequest{Type: core.ResetTypeSoft})
		done <- err
	}()
	require.Eventually(t, func() bool { return session.Correlator().PendingCount() == 1 },
		time.Second, 5*time.Millisecond)
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, session.Correlator().PendingCount())
}

func TestSession_SendCallRejectsUnknownAction(t *testing.T) {
	transport := newFakeTransport()
	schema := NewSchemaRegistry(reservation.Profile)
	session := NewSession("cp001", transport, schema, testLogger())
	go session.Run()
	require.Eventually(t, func() bool { return session.State() == StateOpen },
		time.Second, 5*time.Millisecond)
	t.Cleanup(session.Close)

	_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in any registered profile")
}

func TestSession_CloseFailsPendingCalls(t *testing.T) {
	session, transport := runTestSession(t, "cp001")

	done := make(chan error, 1)
	go func() {
		_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
		done <- err
	}()
	transport.nextFrame(t)

	session.Close()
	assert.ErrorIs(t, <-done, ErrConnectionClosed)

	// After close, new calls are rejected immediately.
	_, err := session.SendCall(context.Background(), &core.ResetRequest{Type: core.ResetTypeSoft})
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestSession_TransportFailureClosesSession(t *testing.T) {
	session, transport := runTestSession(t, "cp001")
	transport.Close()
	require.Eventually(t, func() bool { return session.State() == StateClosed },
		time.Second, 5*time.Millisecond)
}
