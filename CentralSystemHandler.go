package main

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"central_system/notifier"
	"central_system/ocpp"
	"central_system/ocpp16/core"
	"central_system/ocpp16/firmware"
	"central_system/ocpp16/types"
	"central_system/ocppj"
)

// CentralSystemHandler answers the charge-point-initiated calls and turns
// them into notifications on the message bus. Domain state (transactions,
// reservations, connector status) lives on each session; the handler itself
// is stateless apart from the notification channel.
type CentralSystemHandler struct {
	notification      chan notifier.Notification
	heartbeatInterval int
}

func NewCentralSystemHandler(heartbeatInterval int) *CentralSystemHandler {
	return &CentralSystemHandler{
		notification:      make(chan notifier.Notification, 64),
		heartbeatInterval: heartbeatInterval,
	}
}

func (handler *CentralSystemHandler) NotificationChannel() chan notifier.Notification {
	return handler.notification
}

// notify publishes without ever stalling the session's call-handling path; if
// the bus consumer lags the event is dropped with a warning.
func (handler *CentralSystemHandler) notify(topic string, chargePointId string, request interface{}, extra map[string]interface{}) {
	var data = make(map[string]interface{})
	if request != nil {
		bt, _ := json.Marshal(request)
		json.Unmarshal(bt, &data)
	}
	data["chargePointId"] = chargePointId
	for key, value := range extra {
		data[key] = value
	}
	select {
	case handler.notification <- notifier.Notification{Topic: topic, Data: data}:
	default:
		log.WithField("client", chargePointId).Warnf("dropping %v notification, bus consumer not keeping up", topic)
	}
}

// RegisterHandlers installs the callbacks for every charge-point-initiated
// action on a freshly connected session.
func (handler *CentralSystemHandler) RegisterHandlers(session *ocppj.Session) {
	dispatcher := session.Dispatcher()
	dispatcher.Register(core.AuthorizeFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnAuthorize(s, request.(*core.AuthorizeRequest))
	})
	dispatcher.Register(core.BootNotificationFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnBootNotification(s, request.(*core.BootNotificationRequest))
	})
	dispatcher.Register(core.DataTransferFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnDataTransfer(s, request.(*core.DataTransferRequest))
	})
	dispatcher.Register(core.HeartbeatFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnHeartbeat(s, request.(*core.HeartbeatRequest))
	})
	dispatcher.Register(core.MeterValuesFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnMeterValues(s, request.(*core.MeterValuesRequest))
	})
	dispatcher.Register(core.StatusNotificationFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnStatusNotification(s, request.(*core.StatusNotificationRequest))
	})
	dispatcher.Register(core.StartTransactionFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnStartTransaction(s, request.(*core.StartTransactionRequest))
	})
	dispatcher.Register(core.StopTransactionFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnStopTransaction(s, request.(*core.StopTransactionRequest))
	})
	dispatcher.Register(firmware.DiagnosticsStatusNotificationFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnDiagnosticsStatusNotification(s, request.(*firmware.DiagnosticsStatusNotificationRequest))
	})
	dispatcher.Register(firmware.FirmwareStatusNotificationFeatureName, func(s *ocppj.Session, request ocpp.Request) (ocpp.Response, *ocpp.Error) {
		return handler.OnFirmwareStatusNotification(s, request.(*firmware.FirmwareStatusNotificationRequest))
	})
}

// ------------- Core profile callbacks -------------

func (handler *CentralSystemHandler) OnAuthorize(session *ocppj.Session, request *core.AuthorizeRequest) (*core.AuthorizeConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("client authorized with tag %v", request.IdTag)
	return core.NewAuthorizationConfirmation(types.NewIdTagInfo(types.AuthorizationStatusAccepted)), nil
}

func (handler *CentralSystemHandler) OnBootNotification(session *ocppj.Session, request *core.BootNotificationRequest) (*core.BootNotificationConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("boot confirmed for %v %v", request.ChargePointVendor, request.ChargePointModel)
	handler.notify("boot.notification", session.ID(), request, nil)
	return core.NewBootNotificationConfirmation(types.NewDateTime(time.Now()), handler.heartbeatInterval, core.RegistrationStatusAccepted), nil
}

func (handler *CentralSystemHandler) OnDataTransfer(session *ocppj.Session, request *core.DataTransferRequest) (*core.DataTransferConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("received data from vendor %v", request.VendorId)
	handler.notify("data_transfer", session.ID(), request, nil)
	return core.NewDataTransferConfirmation(core.DataTransferStatusAccepted), nil
}

func (handler *CentralSystemHandler) OnHeartbeat(session *ocppj.Session, request *core.HeartbeatRequest) (*core.HeartbeatConfirmation, *ocpp.Error) {
	currentTime := types.NewDateTime(time.Now())
	handler.notify("heartbeat", session.ID(), nil, map[string]interface{}{"currentTime": currentTime})
	return core.NewHeartbeatConfirmation(currentTime), nil
}

func (handler *CentralSystemHandler) OnMeterValues(session *ocppj.Session, request *core.MeterValuesRequest) (*core.MeterValuesConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("received meter values for connector %v", request.ConnectorId)
	handler.notify("meter.values", session.ID(), request, nil)
	return core.NewMeterValuesConfirmation(), nil
}

func (handler *CentralSystemHandler) OnStatusNotification(session *ocppj.Session, request *core.StatusNotificationRequest) (*core.StatusNotificationConfirmation, *ocpp.Error) {
	session.UpdateConnectorStatus(request.ConnectorId, string(request.Status), string(request.ErrorCode))
	logDefault(session.ID(), request.GetFeatureName()).Infof("connector %v is %v (error: %v)", request.ConnectorId, request.Status, request.ErrorCode)
	handler.notify("status.notification", session.ID(), request, nil)
	return core.NewStatusNotificationConfirmation(), nil
}

func (handler *CentralSystemHandler) OnStartTransaction(session *ocppj.Session, request *core.StartTransactionRequest) (*core.StartTransactionConfirmation, *ocpp.Error) {
	transaction := session.StartTransaction(request.ConnectorId, request.IdTag, request.MeterStart, request.Timestamp.Time)
	logDefault(session.ID(), request.GetFeatureName()).Infof("started transaction %v on connector %v for %v", transaction.Id, transaction.ConnectorId, transaction.IdTag)
	handler.notify("start.transaction", session.ID(), request, map[string]interface{}{"transactionId": transaction.Id})
	return core.NewStartTransactionConfirmation(types.NewIdTagInfo(types.AuthorizationStatusAccepted), transaction.Id), nil
}

func (handler *CentralSystemHandler) OnStopTransaction(session *ocppj.Session, request *core.StopTransactionRequest) (*core.StopTransactionConfirmation, *ocpp.Error) {
	transaction, ok := session.StopTransaction(request.TransactionId, request.MeterStop, request.Timestamp.Time)
	if !ok {
		logDefault(session.ID(), request.GetFeatureName()).Warnf("stop for unknown transaction %v", request.TransactionId)
	} else {
		energy := transaction.MeterStop - transaction.MeterStart
		logDefault(session.ID(), request.GetFeatureName()).Infof("stopped transaction %v, energy consumed %v Wh", transaction.Id, energy)
		handler.notify("stop.transaction", session.ID(), request, nil)
	}
	confirmation := core.NewStopTransactionConfirmation()
	confirmation.IdTagInfo = types.NewIdTagInfo(types.AuthorizationStatusAccepted)
	return confirmation, nil
}

// ------------- Firmware management callbacks -------------

func (handler *CentralSystemHandler) OnDiagnosticsStatusNotification(session *ocppj.Session, request *firmware.DiagnosticsStatusNotificationRequest) (*firmware.DiagnosticsStatusNotificationConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("diagnostics upload is %v", request.Status)
	handler.notify("diagnostics.status.notification", session.ID(), request, nil)
	return firmware.NewDiagnosticsStatusNotificationConfirmation(), nil
}

func (handler *CentralSystemHandler) OnFirmwareStatusNotification(session *ocppj.Session, request *firmware.FirmwareStatusNotificationRequest) (*firmware.FirmwareStatusNotificationConfirmation, *ocpp.Error) {
	logDefault(session.ID(), request.GetFeatureName()).Infof("firmware update is %v", request.Status)
	handler.notify("firmware.status.notification", session.ID(), request, nil)
	return firmware.NewFirmwareStatusNotificationConfirmation(), nil
}

// Utility functions

func logDefault(chargePointId string, feature string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"client": chargePointId, "message": feature})
}
