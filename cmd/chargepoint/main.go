package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"central_system/ocpp"
	"central_system/ocpp16/core"
	"central_system/ocpp16/firmware"
	"central_system/ocpp16/reservation"
	"central_system/ocpp16/types"
	"central_system/ocppj"
	"central_system/ws"
)

const (
	defaultCentralSystemUrl = "ws://localhost:8887"
	defaultChargePointId    = "simulator-01"
	defaultConnectorId      = 1
	envVarCentralSystemUrl  = "CENTRAL_SYSTEM_URL"
	envVarChargePointId     = "CHARGE_POINT_ID"
	envVarIdTag             = "ID_TAG"
)

var log *logrus.Logger

// chargePointSimulator emulates a single-connector charge point. It answers
// the central-system-initiated actions with plausible confirmations and
// drives a charging session the way the hardware would.
type chargePointSimulator struct {
	session       *ocppj.Session
	idTag         string
	configuration map[string]string
	meterValue    int
	transactionId int
}

func newChargePointSimulator(session *ocppj.Session, idTag string) *chargePointSimulator {
	return &chargePointSimulator{
		session: session,
		idTag:   idTag,
		configuration: map[string]string{
			"HeartbeatInterval":        "600",
			"MeterValueSampleInterval": "10",
			"NumberOfConnectors":       "1",
		},
		meterValue: 100,
	}
}

func (cp *chargePointSimulator) registerHandlers() {
	dispatcher := cp.session.Dispatcher()
	dispatcher.Register(core.ResetFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.ResetRequest)
		log.Infof("reset requested (%v)", req.Type)
		return &core.ResetConfirmation{Status: core.ResetStatusAccepted}, nil
	})
	dispatcher.Register(core.GetConfigurationFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.GetConfigurationRequest)
		return cp.onGetConfiguration(req), nil
	})
	dispatcher.Register(core.ChangeConfigurationFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.ChangeConfigurationRequest)
		if _, known := cp.configuration[req.Key]; !known {
			return &core.ChangeConfigurationConfirmation{Status: core.ConfigurationStatusNotSupported}, nil
		}
		cp.configuration[req.Key] = req.Value
		log.Infof("configuration changed: %v=%v", req.Key, req.Value)
		return &core.ChangeConfigurationConfirmation{Status: core.ConfigurationStatusAccepted}, nil
	})
	dispatcher.Register(core.ChangeAvailabilityFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.ChangeAvailabilityRequest)
		log.Infof("availability of connector %v changed to %v", req.ConnectorId, req.Type)
		return &core.ChangeAvailabilityConfirmation{Status: core.AvailabilityStatusAccepted}, nil
	})
	dispatcher.Register(core.RemoteStartTransactionFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.RemoteStartTransactionRequest)
		connectorId := defaultConnectorId
		if req.ConnectorId != nil {
			connectorId = *req.ConnectorId
		}
		go cp.startTransaction(connectorId, req.IdTag)
		return &core.RemoteStartTransactionConfirmation{Status: core.RemoteStartStopStatusAccepted}, nil
	})
	dispatcher.Register(core.RemoteStopTransactionFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.RemoteStopTransactionRequest)
		go cp.stopTransaction(req.TransactionId, core.ReasonRemote)
		return &core.RemoteStopTransactionConfirmation{Status: core.RemoteStartStopStatusAccepted}, nil
	})
	dispatcher.Register(core.UnlockConnectorFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*core.UnlockConnectorRequest)
		log.Infof("connector %v unlocked", req.ConnectorId)
		return &core.UnlockConnectorConfirmation{Status: core.UnlockStatusUnlocked}, nil
	})
	dispatcher.Register(core.ClearCacheFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return &core.ClearCacheConfirmation{Status: core.ClearCacheStatusAccepted}, nil
	})
	dispatcher.Register(reservation.ReserveNowFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*reservation.ReserveNowRequest)
		log.Infof("connector %v reserved for %v until %v", req.ConnectorId, req.IdTag, req.ExpiryDate.Format(time.RFC3339))
		return &reservation.ReserveNowConfirmation{Status: reservation.ReservationStatusAccepted}, nil
	})
	dispatcher.Register(reservation.CancelReservationFeatureName, func(session *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		req := request.(*reservation.CancelReservationRequest)
		log.Infof("reservation %v cancelled", req.ReservationId)
		return &reservation.CancelReservationConfirmation{Status: reservation.CancelReservationStatusAccepted}, nil
	})
}

func (cp *chargePointSimulator) onGetConfiguration(req *core.GetConfigurationRequest) *core.GetConfigurationConfirmation {
	confirmation := &core.GetConfigurationConfirmation{}
	keys := req.Key
	if len(keys) == 0 {
		for key := range cp.configuration {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		value, ok := cp.configuration[key]
		if !ok {
			confirmation.UnknownKey = append(confirmation.UnknownKey, key)
			continue
		}
		v := value
		confirmation.ConfigurationKey = append(confirmation.ConfigurationKey, core.ConfigurationKey{
			Key: key, Value: &v,
		})
	}
	return confirmation
}

func (cp *chargePointSimulator) sendCall(request ocpp.Request) (ocpp.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return cp.session.SendCall(ctx, request)
}

func (cp *chargePointSimulator) bootNotification() error {
	response, err := cp.sendCall(&core.BootNotificationRequest{
		ChargePointVendor: "SimuCharge",
		ChargePointModel:  "SC-1000",
		FirmwareVersion:   "1.6.2",
	})
	if err != nil {
		return err
	}
	confirmation := response.(*core.BootNotificationConfirmation)
	if confirmation.Status != core.RegistrationStatusAccepted {
		return fmt.Errorf("boot notification %v", confirmation.Status)
	}
	if interval := strconv.Itoa(confirmation.Interval); interval != cp.configuration["HeartbeatInterval"] {
		cp.configuration["HeartbeatInterval"] = interval
	}
	log.Infof("registered at central system, heartbeat interval %vs", confirmation.Interval)
	return nil
}

func (cp *chargePointSimulator) statusNotification(connectorId int, status core.ChargePointStatus) error {
	_, err := cp.sendCall(&core.StatusNotificationRequest{
		ConnectorId: connectorId,
		ErrorCode:   core.NoError,
		Status:      status,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	return err
}

func (cp *chargePointSimulator) startTransaction(connectorId int, idTag string) {
	authResponse, err := cp.sendCall(&core.AuthorizeRequest{IdTag: idTag})
	if err != nil {
		log.Errorf("authorize failed: %v", err)
		return
	}
	if status := authResponse.(*core.AuthorizeConfirmation).IdTagInfo.Status; status != types.AuthorizationStatusAccepted {
		log.Warnf("idTag %v not authorized: %v", idTag, status)
		return
	}
	if err := cp.statusNotification(connectorId, core.ChargePointStatusPreparing); err != nil {
		log.Errorf("status notification failed: %v", err)
		return
	}
	response, err := cp.sendCall(&core.StartTransactionRequest{
		ConnectorId: connectorId,
		IdTag:       idTag,
		MeterStart:  cp.meterValue,
		Timestamp:   types.NewDateTime(time.Now()),
	})
	if err != nil {
		log.Errorf("start transaction failed: %v", err)
		return
	}
	confirmation := response.(*core.StartTransactionConfirmation)
	cp.transactionId = confirmation.TransactionId
	log.Infof("transaction %v started on connector %v", cp.transactionId, connectorId)
	if err := cp.statusNotification(connectorId, core.ChargePointStatusCharging); err != nil {
		log.Errorf("status notification failed: %v", err)
	}
}

func (cp *chargePointSimulator) meterValues(connectorId int) error {
	cp.meterValue += 10
	transactionId := cp.transactionId
	_, err := cp.sendCall(&core.MeterValuesRequest{
		ConnectorId:   connectorId,
		TransactionId: &transactionId,
		MeterValue: []types.MeterValue{{
			Timestamp: types.NewDateTime(time.Now()),
			SampledValue: []types.SampledValue{{
				Value:     strconv.Itoa(cp.meterValue),
				Context:   types.ReadingContextSamplePeriodic,
				Measurand: types.MeasurandEnergyActiveImportRegister,
				Unit:      "Wh",
			}},
		}},
	})
	return err
}

func (cp *chargePointSimulator) stopTransaction(transactionId int, reason core.Reason) {
	_, err := cp.sendCall(&core.StopTransactionRequest{
		IdTag:         cp.idTag,
		MeterStop:     cp.meterValue,
		Timestamp:     types.NewDateTime(time.Now()),
		TransactionId: transactionId,
		Reason:        reason,
	})
	if err != nil {
		log.Errorf("stop transaction failed: %v", err)
		return
	}
	log.Infof("transaction %v stopped (%v)", transactionId, reason)
	if err := cp.statusNotification(defaultConnectorId, core.ChargePointStatusAvailable); err != nil {
		log.Errorf("status notification failed: %v", err)
	}
}

func (cp *chargePointSimulator) heartbeat() error {
	response, err := cp.sendCall(&core.HeartbeatRequest{})
	if err != nil {
		return err
	}
	log.Debugf("heartbeat acknowledged at %v", response.(*core.HeartbeatConfirmation).CurrentTime.Format(time.RFC3339))
	return nil
}

// chargingSession runs one full session against the central system: boot,
// authorize, charge while reporting meter values, stop, then a data transfer
// and the diagnostics/firmware status reports.
func (cp *chargePointSimulator) chargingSession() {
	if err := cp.bootNotification(); err != nil {
		log.Errorf("boot notification failed: %v", err)
		return
	}
	if err := cp.statusNotification(0, core.ChargePointStatusAvailable); err != nil {
		log.Errorf("status notification failed: %v", err)
		return
	}
	if err := cp.statusNotification(defaultConnectorId, core.ChargePointStatusAvailable); err != nil {
		log.Errorf("status notification failed: %v", err)
		return
	}

	cp.startTransaction(defaultConnectorId, cp.idTag)
	if cp.transactionId == 0 {
		return
	}
	for i := 0; i < 3; i++ {
		time.Sleep(5 * time.Second)
		if err := cp.meterValues(defaultConnectorId); err != nil {
			log.Errorf("meter values failed: %v", err)
			return
		}
	}
	cp.stopTransaction(cp.transactionId, core.ReasonLocal)

	if _, err := cp.sendCall(&core.DataTransferRequest{
		VendorId:  "SimuCharge",
		MessageId: "diagnostics",
		Data:      map[string]interface{}{"sessionEnergy": cp.meterValue},
	}); err != nil {
		log.Errorf("data transfer failed: %v", err)
	}

	if _, err := cp.sendCall(&firmware.DiagnosticsStatusNotificationRequest{
		Status: firmware.DiagnosticsStatusUploaded,
	}); err != nil {
		log.Errorf("diagnostics status notification failed: %v", err)
	}
	if _, err := cp.sendCall(&firmware.FirmwareStatusNotificationRequest{
		Status: firmware.FirmwareStatusDownloaded,
	}); err != nil {
		log.Errorf("firmware status notification failed: %v", err)
	}
}

func main() {
	chargePointId, ok := os.LookupEnv(envVarChargePointId)
	if !ok {
		chargePointId = defaultChargePointId
	}
	centralSystemUrl, ok := os.LookupEnv(envVarCentralSystemUrl)
	if !ok {
		centralSystemUrl = defaultCentralSystemUrl
	}
	idTag, ok := os.LookupEnv(envVarIdTag)
	if !ok {
		idTag = "AA12345"
	}

	channel, err := ws.Dial(fmt.Sprintf("%v/%v", centralSystemUrl, chargePointId), log)
	if err != nil {
		log.Fatalf("couldn't connect to central system at %v: %v", centralSystemUrl, err)
	}

	schema := ocppj.NewSchemaRegistry(core.Profile, reservation.Profile, firmware.Profile)
	session := ocppj.NewSession(chargePointId, channel, schema, log)
	simulator := newChargePointSimulator(session, idTag)
	simulator.registerHandlers()

	done := make(chan struct{})
	go func() {
		session.Run()
		close(done)
	}()
	log.Infof("connected to central system as %v", chargePointId)

	go simulator.chargingSession()

	heartbeats := time.NewTicker(60 * time.Second)
	defer heartbeats.Stop()
	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case <-heartbeats.C:
			if err := simulator.heartbeat(); err != nil {
				log.Errorf("heartbeat failed: %v", err)
			}
		case <-interrupted:
			log.Info("shutting down charge point")
			session.Close()
			<-done
			return
		case <-done:
			log.Info("connection to central system lost")
			return
		}
	}
}

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
}
