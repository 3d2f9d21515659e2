package ocppj

import (
	"time"
)

type TransactionStatus string

const (
	TransactionActive  TransactionStatus = "Active"
	TransactionStopped TransactionStatus = "Stopped"
)

// Transaction is one charging transaction on a charge point. Ids are
// allocated by a strictly monotonic per-session counter, so they are
// collision-free within the session even across start/stop interleavings.
type Transaction struct {
	Id             int
	ConnectorId    int
	IdTag          string
	MeterStart     int
	MeterStop      int
	StartTimestamp time.Time
	StopTimestamp  time.Time
	Status         TransactionStatus
}

// Reservation is a connector reservation. Expiry is advisory: nothing reaps
// an expired reservation eagerly, a later operation rejects it at use-time.
type Reservation struct {
	Id          int
	ConnectorId int
	IdTag       string
	ExpiryDate  time.Time
}

func (r Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiryDate)
}

// Connector tracks the last reported status of one connector. No assumptions
// about the # of connectors; entries appear as the charge point reports them.
type Connector struct {
	Id                 int
	Status             string
	ErrorCode          string
	CurrentTransaction int
}

func (s *Session) getConnector(id int) *Connector {
	connector, ok := s.connectors[id]
	if !ok {
		connector = &Connector{Id: id, CurrentTransaction: -1}
		s.connectors[id] = connector
	}
	return connector
}

// StartTransaction records a new active transaction and returns it with a
// freshly allocated id. Callers run on the session's sequential call-handling
// path, so no two calls can observe the same counter value.
func (s *Session) StartTransaction(connectorId int, idTag string, meterStart int, timestamp time.Time) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTransactionId++
	transaction := &Transaction{
		Id:             s.nextTransactionId,
		ConnectorId:    connectorId,
		IdTag:          idTag,
		MeterStart:     meterStart,
		StartTimestamp: timestamp,
		Status:         TransactionActive,
	}
	s.transactions[transaction.Id] = transaction
	s.getConnector(connectorId).CurrentTransaction = transaction.Id
	return *transaction
}

// StopTransaction marks a transaction stopped and evicts it from the active
// set. An unknown id returns false; the caller answers the charge point
// anyway and logs a warning.
func (s *Session) StopTransaction(transactionId int, meterStop int, timestamp time.Time) (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transaction, ok := s.transactions[transactionId]
	if !ok {
		return Transaction{}, false
	}
	transaction.MeterStop = meterStop
	transaction.StopTimestamp = timestamp
	transaction.Status = TransactionStopped
	delete(s.transactions, transactionId)
	if connector, ok := s.connectors[transaction.ConnectorId]; ok {
		connector.CurrentTransaction = -1
	}
	return *transaction, true
}

// ActiveTransactions snapshots the transactions currently in progress.
func (s *Session) ActiveTransactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	transactions := make([]Transaction, 0, len(s.transactions))
	for _, transaction := range s.transactions {
		transactions = append(transactions, *transaction)
	}
	return transactions
}

func (s *Session) Transaction(transactionId int) (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	transaction, ok := s.transactions[transactionId]
	if !ok {
		return Transaction{}, false
	}
	return *transaction, true
}

// AddReservation stores a reservation, replacing any previous one with the
// same id.
func (s *Session) AddReservation(reservation Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[reservation.Id] = &reservation
}

func (s *Session) CancelReservation(reservationId int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reservations[reservationId]
	delete(s.reservations, reservationId)
	return ok
}

func (s *Session) Reservation(reservationId int) (Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservation, ok := s.reservations[reservationId]
	if !ok {
		return Reservation{}, false
	}
	return *reservation, true
}

func (s *Session) Reservations() []Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	reservations := make([]Reservation, 0, len(s.reservations))
	for _, reservation := range s.reservations {
		reservations = append(reservations, *reservation)
	}
	return reservations
}

// UpdateConnectorStatus records a StatusNotification. Connector 0 refers to
// the charge point as a whole.
func (s *Session) UpdateConnectorStatus(connectorId int, status string, errorCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if connectorId > 0 {
		connector := s.getConnector(connectorId)
		connector.Status = status
		connector.ErrorCode = errorCode
		return
	}
	s.status = status
	s.errorCode = errorCode
}

func (s *Session) ConnectorStatus(connectorId int) (Connector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	connector, ok := s.connectors[connectorId]
	if !ok {
		return Connector{}, false
	}
	return *connector, true
}

// StationStatus reports the station-wide status last sent for connector 0.
func (s *Session) StationStatus() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.errorCode
}
