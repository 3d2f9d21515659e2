package ocppj

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionIdsAreMonotonic(t *testing.T) {
	session := newTestSession(t, "cp001")
	now := time.Now()

	first := session.StartTransaction(1, "ABC123", 100, now)
	second := session.StartTransaction(2, "DEF456", 200, now)
	assert.Equal(t, 1, first.Id)
	assert.Equal(t, 2, second.Id)

	_, ok := session.StopTransaction(first.Id, 150, now)
	require.True(t, ok)

	// The counter never reuses an id, even after a stop.
	third := session.StartTransaction(1, "ABC123", 150, now)
	assert.Equal(t, 3, third.Id)
	assert.Len(t, session.ActiveTransactions(), 2)
}

func TestStopTransaction(t *testing.T) {
	session := newTestSession(t, "cp001")
	started := session.StartTransaction(1, "ABC123", 100, time.Now())

	stopTime := time.Now()
	stopped, ok := session.StopTransaction(started.Id, 180, stopTime)
	require.True(t, ok)
	assert.Equal(t, TransactionStopped, stopped.Status)
	assert.Equal(t, 100, stopped.MeterStart)
	assert.Equal(t, 180, stopped.MeterStop)

	_, ok = session.Transaction(started.Id)
	assert.False(t, ok)

	_, ok = session.StopTransaction(999, 0, stopTime)
	assert.False(t, ok)
}

func TestTransactionTracksConnector(t *testing.T) {
	session := newTestSession(t, "cp001")
	session.UpdateConnectorStatus(1, "Available", "NoError")

	transaction := session.StartTransaction(1, "ABC123", 100, time.Now())
	connector, ok := session.ConnectorStatus(1)
	require.True(t, ok)
	assert.Equal(t, transaction.Id, connector.CurrentTransaction)

	session.StopTransaction(transaction.Id, 150, time.Now())
	connector, _ = session.ConnectorStatus(1)
	assert.Equal(t, -1, connector.CurrentTransaction)
}

func TestReservations(t *testing.T) {
	session := newTestSession(t, "cp001")
	expiry := time.Now().Add(5 * time.Minute)
	session.AddReservation(Reservation{Id: 7, ConnectorId: 1, IdTag: "ABC123", ExpiryDate: expiry})

	stored, ok := session.Reservation(7)
	require.True(t, ok)
	assert.Equal(t, "ABC123", stored.IdTag)
	assert.False(t, stored.Expired(time.Now()))
	assert.True(t, stored.Expired(expiry.Add(time.Second)))

	assert.True(t, session.CancelReservation(7))
	assert.False(t, session.CancelReservation(7))
	assert.Empty(t, session.Reservations())
}

func TestConnectorStatus(t *testing.T) {
	session := newTestSession(t, "cp001")

	// Connector 0 is the charge point as a whole.
	session.UpdateConnectorStatus(0, "Available", "NoError")
	status, errorCode := session.StationStatus()
	assert.Equal(t, "Available", status)
	assert.Equal(t, "NoError", errorCode)
	_, ok := session.ConnectorStatus(0)
	assert.False(t, ok)

	session.UpdateConnectorStatus(2, "Charging", "NoError")
	connector, ok := session.ConnectorStatus(2)
	require.True(t, ok)
	assert.Equal(t, "Charging", connector.Status)

	_, ok = session.ConnectorStatus(3)
	assert.False(t, ok)
}
