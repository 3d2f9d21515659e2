// Package reservation implements the OCPP 1.6 reservation profile.
package reservation

import (
	"reflect"

	"central_system/ocpp"
	"central_system/ocpp16/types"
)

const ProfileName = "reservation"

const (
	ReserveNowFeatureName        = "ReserveNow"
	CancelReservationFeatureName = "CancelReservation"
)

var Profile = ocpp.NewProfile(
	ProfileName,
	ReserveNowFeature{},
	CancelReservationFeature{},
)

type ReservationStatus string

const (
	ReservationStatusAccepted    ReservationStatus = "Accepted"
	ReservationStatusFaulted     ReservationStatus = "Faulted"
	ReservationStatusOccupied    ReservationStatus = "Occupied"
	ReservationStatusRejected    ReservationStatus = "Rejected"
	ReservationStatusUnavailable ReservationStatus = "Unavailable"
)

type CancelReservationStatus string

const (
	CancelReservationStatusAccepted CancelReservationStatus = "Accepted"
	CancelReservationStatusRejected CancelReservationStatus = "Rejected"
)

type ReserveNowRequest struct {
	ConnectorId   int             `json:"connectorId" validate:"gte=0"`
	ExpiryDate    *types.DateTime `json:"expiryDate" validate:"required"`
	IdTag         string          `json:"idTag" validate:"required,max=20"`
	ParentIdTag   string          `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	ReservationId int             `json:"reservationId"`
}

type ReserveNowConfirmation struct {
	Status ReservationStatus `json:"status" validate:"required"`
}

func (r ReserveNowRequest) GetFeatureName() string      { return ReserveNowFeatureName }
func (c ReserveNowConfirmation) GetFeatureName() string { return ReserveNowFeatureName }

type ReserveNowFeature struct{}

func (f ReserveNowFeature) GetFeatureName() string { return ReserveNowFeatureName }
func (f ReserveNowFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(ReserveNowRequest{})
}
func (f ReserveNowFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(ReserveNowConfirmation{})
}

type CancelReservationRequest struct {
	ReservationId int `json:"reservationId"`
}

type CancelReservationConfirmation struct {
	Status CancelReservationStatus `json:"status" validate:"required"`
}

func (r CancelReservationRequest) GetFeatureName() string {
	return CancelReservationFeatureName
}
func (c CancelReservationConfirmation) GetFeatureName() string {
	return CancelReservationFeatureName
}

type CancelReservationFeature struct{}

func (f CancelReservationFeature) GetFeatureName() string { return CancelReservationFeatureName }
func (f CancelReservationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(CancelReservationRequest{})
}
func (f CancelReservationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(CancelReservationConfirmation{})
}
