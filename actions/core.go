package actions

import (
	"central_system/common"
	"central_system/ocpp16/core"
	"central_system/ocppj"
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

func logDefault(chargePointId string, feature string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{"client": chargePointId, "message": feature})
}

// lookupSession resolves the target charge point or answers with the coded
// error the operator expects.
func lookupSession(registry *ocppj.Registry, chargePointID string, responseChannel chan common.Response) (*ocppj.Session, bool) {
	session, ok := registry.Lookup(chargePointID)
	if !ok {
		responseChannel <- common.Response{
			Err: &common.Error{
				Code:    "charge.point.not.connected",
				Message: fmt.Sprintf("El Punto de Carga %v no está conectado", chargePointID),
			},
		}
		return nil, false
	}
	return session, true
}

func sendFailed(chargePointID string) *common.Error {
	return &common.Error{
		Code:    "command.message.not.send",
		Message: fmt.Sprintf("No se pudo enviar el comando al Punto de Carga: %v", chargePointID),
	}
}

type CoreProfileActions struct {
	registry *ocppj.Registry
}

func InitializeCoreProfileActions(registry *ocppj.Registry) CoreProfileActions {
	return CoreProfileActions{
		registry: registry,
	}
}

func (this *CoreProfileActions) Reset(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	var data map[string]interface{} = make(map[string]interface{})
	if err := json.Unmarshal(payload, &data); err != nil {
		response.Err = &common.Error{
			Code:    "command.reset.payload.not.valid",
			Message: "Conversion a json no valida",
		}
		responseChannel <- response
		return
	}

	request := &core.ResetRequest{Type: core.ResetTypeSoft}
	if fmt.Sprintf("%v", data["type"]) == "Hard" {
		request.Type = core.ResetTypeHard
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.ResetFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{} = make(map[string]interface{})
		status  core.ResetStatus       = confirmation.(*core.ResetConfirmation).Status
		message string                 = ""
	)
	switch status {
	case core.ResetStatusAccepted:
		message = fmt.Sprintf("Se ha aceptado el reinicio por el modo: %v", request.Type)
	case core.ResetStatusRejected:
		message = "No se ha aceptado el reinicio."
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) GetConfiguration(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.GetConfigurationRequest{}
	if err := json.Unmarshal(payload, request); err != nil {
		response.Err = &common.Error{
			Code:    "command.get.configuration.payload.not.valid",
			Message: "Campos no válidos para obtener la configuración del Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.GetConfigurationFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var result map[string]interface{} = make(map[string]interface{})
	for _, configurationKey := range confirmation.(*core.GetConfigurationConfirmation).ConfigurationKey {
		result[configurationKey.Key] = struct {
			Readonly bool        `json:"readonly"`
			Value    interface{} `json:"value"`
		}{
			configurationKey.Readonly,
			configurationKey.Value,
		}
	}
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) ChangeConfiguration(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.ChangeConfigurationRequest{}
	json.Unmarshal(payload, request)
	if err := ocppj.Validator.Struct(request); err != nil {
		response.Err = &common.Error{
			Code:    "command.change.configuration.payload.not.valid",
			Message: "Campos no válidos para cambiar la configuración del Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.ChangeConfigurationFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{}   = make(map[string]interface{})
		status  core.ConfigurationStatus = confirmation.(*core.ChangeConfigurationConfirmation).Status
		message string                   = ""
	)
	switch status {
	case core.ConfigurationStatusAccepted:
		message = fmt.Sprintf("Se ha cambiado la propiedad %v al valor %v", request.Key, request.Value)
	case core.ConfigurationStatusRebootRequired:
		message = fmt.Sprintf("Se ha cambiado la propiedad %v; se requiere reiniciar el Punto de Carga", request.Key)
	case core.ConfigurationStatusNotSupported:
		message = fmt.Sprintf("La propiedad %v no está soportada", request.Key)
	default:
		message = fmt.Sprintf("No se ha aceptado el cambio de la propiedad %v", request.Key)
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) ChangeAvailability(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.ChangeAvailabilityRequest{}
	json.Unmarshal(payload, request)
	if err := ocppj.Validator.Struct(request); err != nil {
		response.Err = &common.Error{
			Code:    "command.change.availability.payload.not.valid",
			Message: "Campos no válidos para cambiar la disponibilidad del Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.ChangeAvailabilityFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var result map[string]interface{} = make(map[string]interface{})
	result["status"] = confirmation.(*core.ChangeAvailabilityConfirmation).Status
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) RemoteStartTransaction(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.RemoteStartTransactionRequest{}
	json.Unmarshal(payload, request)
	if err := ocppj.Validator.Struct(request); err != nil {
		response.Err = &common.Error{
			Code:    "command.remote.start.transaction.payload.not.valid",
			Message: "Campos no válidos para iniciar la transacción en el Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.RemoteStartTransactionFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{}     = make(map[string]interface{})
		status  core.RemoteStartStopStatus = confirmation.(*core.RemoteStartTransactionConfirmation).Status
		message string                     = ""
	)
	switch status {
	case core.RemoteStartStopStatusAccepted:
		message = fmt.Sprintf("Se ha iniciado la transacción para el identificador %v", request.IdTag)
	default:
		message = "No se ha aceptado el inicio de la transacción."
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) RemoteStopTransaction(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.RemoteStopTransactionRequest{}
	if err := json.Unmarshal(payload, request); err != nil || request.TransactionId == 0 {
		response.Err = &common.Error{
			Code:    "command.remote.stop.transaction.payload.not.valid",
			Message: "Campos no válidos para detener la transacción en el Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.RemoteStopTransactionFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{}     = make(map[string]interface{})
		status  core.RemoteStartStopStatus = confirmation.(*core.RemoteStopTransactionConfirmation).Status
		message string                     = ""
	)
	switch status {
	case core.RemoteStartStopStatusAccepted:
		message = fmt.Sprintf("Se ha detenido la transacción %v", request.TransactionId)
	default:
		message = fmt.Sprintf("No se ha aceptado la detención de la transacción %v", request.TransactionId)
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) UnlockConnector(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &core.UnlockConnectorRequest{}
	json.Unmarshal(payload, request)
	if err := ocppj.Validator.Struct(request); err != nil {
		response.Err = &common.Error{
			Code:    "command.unlock.connector.payload.not.valid",
			Message: "Campos no válidos para desbloquear el conector del Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, core.UnlockConnectorFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var result map[string]interface{} = make(map[string]interface{})
	result["status"] = confirmation.(*core.UnlockConnectorConfirmation).Status
	response.Payload = result

	responseChannel <- response
}

func (this *CoreProfileActions) ClearCache(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	confirmation, err := session.SendCall(context.Background(), &core.ClearCacheRequest{})
	if err != nil {
		logDefault(chargePointID, core.ClearCacheFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var result map[string]interface{} = make(map[string]interface{})
	result["status"] = confirmation.(*core.ClearCacheConfirmation).Status
	response.Payload = result

	responseChannel <- response
}
