package actions

import (
	"central_system/common"
	"central_system/ocpp16/reservation"
	"central_system/ocpp16/types"
	"central_system/ocppj"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"
)

// reservationId allocates ids for operator-initiated reservations, unique
// for the lifetime of the process.
var reservationId int64 = 0

func convertToReserveNowRequest(payload []byte) (*reservation.ReserveNowRequest, *common.Error) {
	var data map[string]interface{} = make(map[string]interface{})
	json.Unmarshal(payload, &data)

	request := &reservation.ReserveNowRequest{
		ExpiryDate:    types.NewDateTime(time.Now().Add(5 * time.Minute)),
		ReservationId: int(atomic.AddInt64(&reservationId, 1)),
	}

	connectorId, _ := strconv.ParseInt(fmt.Sprint(data["connectorId"]), 10, 32)
	request.ConnectorId = int(connectorId)

	if idTag, existIdTag := data["idTag"]; existIdTag {
		request.IdTag = fmt.Sprint(idTag)
		if len(request.IdTag) == 0 {
			return nil, &common.Error{
				Code:    "command.reserve.now.payload.not.valid",
				Message: "El identificador no puede ser vacio",
			}
		}
	} else {
		return nil, &common.Error{
			Code:    "command.reserve.now.payload.not.valid",
			Message: fmt.Sprintf("Campos no válidos para realizar reservación en el Punto de Carga: %v", "propiedad idTag no existe"),
		}
	}

	// expiryDate viaja como epoch en segundos
	if expiryDate, existExpiryDate := data["expiryDate"]; existExpiryDate {
		seconds, err := strconv.ParseFloat(fmt.Sprint(expiryDate), 64)
		if err != nil {
			return nil, &common.Error{
				Code:    "command.reserve.now.payload.not.valid",
				Message: fmt.Sprintf("Campos no válidos para realizar reservación en el Punto de Carga: %v", "propiedad expiryDate no es un número"),
			}
		}
		request.ExpiryDate = types.NewDateTime(time.Unix(int64(seconds), 0))
	} else {
		return nil, &common.Error{
			Code:    "command.reserve.now.payload.not.valid",
			Message: fmt.Sprintf("Campos no válidos para realizar reservación en el Punto de Carga: %v", "propiedad expiryDate no existe"),
		}
	}

	return request, nil
}

type ReservationProfileActions struct {
	registry *ocppj.Registry
}

func InitializeReservationProfileActions(registry *ocppj.Registry) ReservationProfileActions {
	return ReservationProfileActions{
		registry: registry,
	}
}

func (this *ReservationProfileActions) ReserveNow(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request, convertErr := convertToReserveNowRequest(payload)
	if convertErr != nil {
		response.Err = convertErr
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, reservation.ReserveNowFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{}        = make(map[string]interface{})
		status  reservation.ReservationStatus = confirmation.(*reservation.ReserveNowConfirmation).Status
		message string                        = ""
	)
	switch status {
	case reservation.ReservationStatusAccepted:
		session.AddReservation(ocppj.Reservation{
			Id:          request.ReservationId,
			ConnectorId: request.ConnectorId,
			IdTag:       request.IdTag,
			ExpiryDate:  request.ExpiryDate.Time,
		})
		message = fmt.Sprintf("Se ha realizado la reservación %v en el conector %v", request.ReservationId, request.ConnectorId)
		result["reservationId"] = request.ReservationId
	default:
		message = fmt.Sprintf("No se ha aceptado la reservación: %v", status)
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}

func (this *ReservationProfileActions) CancelReservation(chargePointID string, payload []byte, responseChannel chan common.Response) {
	var response common.Response

	session, ok := lookupSession(this.registry, chargePointID, responseChannel)
	if !ok {
		return
	}

	request := &reservation.CancelReservationRequest{}
	if err := json.Unmarshal(payload, request); err != nil || request.ReservationId == 0 {
		response.Err = &common.Error{
			Code:    "command.cancel.reservation.payload.not.valid",
			Message: "Campos no válidos para cancelar la reservación en el Punto de Carga.",
		}
		responseChannel <- response
		return
	}

	confirmation, err := session.SendCall(context.Background(), request)
	if err != nil {
		logDefault(chargePointID, reservation.CancelReservationFeatureName).Errorf("error on request: %v", err)
		response.Err = sendFailed(chargePointID)
		responseChannel <- response
		return
	}

	var (
		result  map[string]interface{}              = make(map[string]interface{})
		status  reservation.CancelReservationStatus = confirmation.(*reservation.CancelReservationConfirmation).Status
		message string                              = ""
	)
	switch status {
	case reservation.CancelReservationStatusAccepted:
		session.CancelReservation(request.ReservationId)
		message = fmt.Sprintf("La reservación %v ha sido cancelada", request.ReservationId)
	default:
		message = fmt.Sprintf("No se pudo cancelar la reservación %v", request.ReservationId)
	}
	result["status"] = status
	result["message"] = message
	response.Payload = result

	responseChannel <- response
}
