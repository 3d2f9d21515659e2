package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"central_system/notifier"
	"central_system/ocpp16/core"
	"central_system/ocpp16/firmware"
	"central_system/ocpp16/reservation"
	"central_system/ocppj"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type pipeTransport struct {
	inbound   chan []byte
	outbound  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{
		inbound:  make(chan []byte, 16),
		outbound: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (t *pipeTransport) Send(data []byte) error {
	select {
	case t.outbound <- data:
		return nil
	case <-t.closed:
		return errors.New("transport closed")
	}
}

func (t *pipeTransport) Receive() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.closed:
		return nil, errors.New("transport closed")
	}
}

func (t *pipeTransport) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

type testChargePoint struct {
	t         *testing.T
	session   *ocppj.Session
	transport *pipeTransport
	handler   *CentralSystemHandler
}

func connectTestChargePoint(t *testing.T, identity string) *testChargePoint {
	t.Helper()
	transport := newPipeTransport()
	schema := ocppj.NewSchemaRegistry(core.Profile, reservation.Profile, firmware.Profile)
	session := ocppj.NewSession(identity, transport, schema, log)
	handler := NewCentralSystemHandler(600)
	handler.RegisterHandlers(session)
	go session.Run()
	require.Eventually(t, func() bool { return session.State() == ocppj.StateOpen },
		time.Second, 5*time.Millisecond)
	t.Cleanup(session.Close)
	return &testChargePoint{t: t, session: session, transport: transport, handler: handler}
}

// call sends a charge-point-initiated request frame and decodes the
// confirmation payload into out.
func (cp *testChargePoint) call(uniqueId string, action string, payload string, out interface{}) {
	cp.t.Helper()
	frame, err := (&ocppj.Call{
		UniqueId: uniqueId,
		Action:   action,
		Payload:  json.RawMessage(payload),
	}).MarshalJSON()
	require.NoError(cp.t, err)
	cp.transport.inbound <- frame

	select {
	case data := <-cp.transport.outbound:
		message, decodeErr := ocppj.ParseMessage(data)
		require.Nil(cp.t, decodeErr)
		result, ok := message.(*ocppj.CallResult)
		require.True(cp.t, ok, "expected a CallResult, got %T", message)
		require.Equal(cp.t, uniqueId, result.UniqueId)
		if out != nil {
			require.NoError(cp.t, json.Unmarshal(result.Payload, out))
		}
	case <-time.After(2 * time.Second):
		cp.t.Fatal("no response from central system")
	}
}

func (cp *testChargePoint) expectNotification(topic string) notifier.Notification {
	cp.t.Helper()
	select {
	case notification := <-cp.handler.NotificationChannel():
		require.Equal(cp.t, topic, notification.Topic)
		return notification
	case <-time.After(2 * time.Second):
		cp.t.Fatalf("no %v notification", topic)
		return notifier.Notification{}
	}
}

func TestChargeCycle(t *testing.T) {
	cp := connectTestChargePoint(t, "cp001")

	var boot core.BootNotificationConfirmation
	cp.call("m-1", core.BootNotificationFeatureName,
		`{"chargePointVendor":"VendorX","chargePointModel":"SingleSocketCharger"}`, &boot)
	assert.Equal(t, core.RegistrationStatusAccepted, boot.Status)
	assert.Equal(t, 600, boot.Interval)
	notification := cp.expectNotification("boot.notification")
	assert.Equal(t, "cp001", notification.Data["chargePointId"])
	assert.Equal(t, "VendorX", notification.Data["chargePointVendor"])

	cp.call("m-2", core.StatusNotificationFeatureName,
		`{"connectorId":1,"errorCode":"NoError","status":"Available"}`, nil)
	cp.expectNotification("status.notification")
	connector, ok := cp.session.ConnectorStatus(1)
	require.True(t, ok)
	assert.Equal(t, "Available", connector.Status)

	var authorize core.AuthorizeConfirmation
	cp.call("m-3", core.AuthorizeFeatureName, `{"idTag":"ABC123"}`, &authorize)
	require.NotNil(t, authorize.IdTagInfo)

	var start core.StartTransactionConfirmation
	cp.call("m-4", core.StartTransactionFeatureName,
		`{"connectorId":1,"idTag":"ABC123","meterStart":100,"timestamp":"2024-05-01T10:00:00Z"}`, &start)
	assert.Equal(t, 1, start.TransactionId)
	notification = cp.expectNotification("start.transaction")
	assert.EqualValues(t, 1, notification.Data["transactionId"])
	assert.Len(t, cp.session.ActiveTransactions(), 1)

	cp.call("m-5", core.MeterValuesFeatureName,
		`{"connectorId":1,"transactionId":1,"meterValue":[{"timestamp":"2024-05-01T10:05:00Z","sampledValue":[{"value":"150"}]}]}`, nil)
	cp.expectNotification("meter.values")

	cp.call("m-6", core.StopTransactionFeatureName,
		`{"transactionId":1,"meterStop":180,"timestamp":"2024-05-01T10:15:00Z"}`, nil)
	cp.expectNotification("stop.transaction")
	assert.Empty(t, cp.session.ActiveTransactions())

	var heartbeat core.HeartbeatConfirmation
	cp.call("m-7", core.HeartbeatFeatureName, `{}`, &heartbeat)
	require.NotNil(t, heartbeat.CurrentTime)
	cp.expectNotification("heartbeat")
}

func TestStopUnknownTransactionStillConfirmed(t *testing.T) {
	cp := connectTestChargePoint(t, "cp001")

	var stop core.StopTransactionConfirmation
	cp.call("m-1", core.StopTransactionFeatureName,
		`{"transactionId":42,"meterStop":0,"timestamp":"2024-05-01T10:15:00Z"}`, &stop)
	require.NotNil(t, stop.IdTagInfo)

	// No stop.transaction notification is published for an unknown id.
	select {
	case notification := <-cp.handler.NotificationChannel():
		t.Fatalf("unexpected notification %v", notification.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFirmwareStatusNotifications(t *testing.T) {
	cp := connectTestChargePoint(t, "cp001")

	var diagnostics firmware.DiagnosticsStatusNotificationConfirmation
	cp.call("m-1", firmware.DiagnosticsStatusNotificationFeatureName,
		`{"status":"Uploaded"}`, &diagnostics)
	notification := cp.expectNotification("diagnostics.status.notification")
	assert.Equal(t, "Uploaded", notification.Data["status"])

	var fw firmware.FirmwareStatusNotificationConfirmation
	cp.call("m-2", firmware.FirmwareStatusNotificationFeatureName,
		`{"status":"Downloaded"}`, &fw)
	notification = cp.expectNotification("firmware.status.notification")
	assert.Equal(t, "Downloaded", notification.Data["status"])
}

func TestDataTransfer(t *testing.T) {
	cp := connectTestChargePoint(t, "cp001")

	var confirmation core.DataTransferConfirmation
	cp.call("m-1", core.DataTransferFeatureName,
		`{"vendorId":"VendorX","messageId":"diagnostics","data":{"foo":"bar"}}`, &confirmation)
	assert.Equal(t, core.DataTransferStatusAccepted, confirmation.Status)
	notification := cp.expectNotification("data_transfer")
	assert.Equal(t, "VendorX", notification.Data["vendorId"])
}
