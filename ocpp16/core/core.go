// Package core implements the OCPP 1.6 core profile: the typed request and
// confirmation payloads for every core action, plus the feature definitions
// the engine's schema registry is built from.
package core

import (
	"reflect"

	"central_system/ocpp"
	"central_system/ocpp16/types"
)

const ProfileName = "core"

const (
	AuthorizeFeatureName          = "Authorize"
	BootNotificationFeatureName   = "BootNotification"
	DataTransferFeatureName       = "DataTransfer"
	HeartbeatFeatureName          = "Heartbeat"
	MeterValuesFeatureName        = "MeterValues"
	StartTransactionFeatureName   = "StartTransaction"
	StatusNotificationFeatureName = "StatusNotification"
	StopTransactionFeatureName    = "StopTransaction"
)

// Profile groups every core feature, charge-point and central-system
// initiated alike.
var Profile = ocpp.NewProfile(
	ProfileName,
	AuthorizeFeature{},
	BootNotificationFeature{},
	ChangeAvailabilityFeature{},
	ChangeConfigurationFeature{},
	ClearCacheFeature{},
	DataTransferFeature{},
	GetConfigurationFeature{},
	HeartbeatFeature{},
	MeterValuesFeature{},
	RemoteStartTransactionFeature{},
	RemoteStopTransactionFeature{},
	ResetFeature{},
	StartTransactionFeature{},
	StatusNotificationFeature{},
	StopTransactionFeature{},
	UnlockConnectorFeature{},
)

type RegistrationStatus string

const (
	RegistrationStatusAccepted RegistrationStatus = "Accepted"
	RegistrationStatusPending  RegistrationStatus = "Pending"
	RegistrationStatusRejected RegistrationStatus = "Rejected"
)

type ChargePointStatus string

const (
	ChargePointStatusAvailable     ChargePointStatus = "Available"
	ChargePointStatusPreparing     ChargePointStatus = "Preparing"
	ChargePointStatusCharging      ChargePointStatus = "Charging"
	ChargePointStatusSuspendedEVSE ChargePointStatus = "SuspendedEVSE"
	ChargePointStatusSuspendedEV   ChargePointStatus = "SuspendedEV"
	ChargePointStatusFinishing     ChargePointStatus = "Finishing"
	ChargePointStatusReserved      ChargePointStatus = "Reserved"
	ChargePointStatusUnavailable   ChargePointStatus = "Unavailable"
	ChargePointStatusFaulted       ChargePointStatus = "Faulted"
)

type ChargePointErrorCode string

const (
	NoError              ChargePointErrorCode = "NoError"
	ConnectorLockFailure ChargePointErrorCode = "ConnectorLockFailure"
	GroundFailure        ChargePointErrorCode = "GroundFailure"
	HighTemperature      ChargePointErrorCode = "HighTemperature"
	InternalError        ChargePointErrorCode = "InternalError"
	OverCurrentFailure   ChargePointErrorCode = "OverCurrentFailure"
	PowerMeterFailure    ChargePointErrorCode = "PowerMeterFailure"
	PowerSwitchFailure   ChargePointErrorCode = "PowerSwitchFailure"
	ReaderFailure        ChargePointErrorCode = "ReaderFailure"
	WeakSignal           ChargePointErrorCode = "WeakSignal"
	OtherError           ChargePointErrorCode = "OtherError"
)

type DataTransferStatus string

const (
	DataTransferStatusAccepted        DataTransferStatus = "Accepted"
	DataTransferStatusRejected        DataTransferStatus = "Rejected"
	DataTransferStatusUnknownVendorId DataTransferStatus = "UnknownVendorId"
)

type Reason string

const (
	ReasonLocal          Reason = "Local"
	ReasonRemote         Reason = "Remote"
	ReasonEVDisconnected Reason = "EVDisconnected"
	ReasonPowerLoss      Reason = "PowerLoss"
	ReasonReboot         Reason = "Reboot"
	ReasonOther          Reason = "Other"
)

// -------------------- Authorize --------------------

type AuthorizeRequest struct {
	IdTag string `json:"idTag" validate:"required,max=20"`
}

type AuthorizeConfirmation struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo" validate:"required"`
}

func (r AuthorizeRequest) GetFeatureName() string      { return AuthorizeFeatureName }
func (c AuthorizeConfirmation) GetFeatureName() string { return AuthorizeFeatureName }

func NewAuthorizationConfirmation(idTagInfo *types.IdTagInfo) *AuthorizeConfirmation {
	return &AuthorizeConfirmation{IdTagInfo: idTagInfo}
}

type AuthorizeFeature struct{}

func (f AuthorizeFeature) GetFeatureName() string { return AuthorizeFeatureName }
func (f AuthorizeFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(AuthorizeRequest{})
}
func (f AuthorizeFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(AuthorizeConfirmation{})
}

// -------------------- BootNotification --------------------

type BootNotificationRequest struct {
	ChargePointVendor       string `json:"chargePointVendor" validate:"required,max=20"`
	ChargePointModel        string `json:"chargePointModel" validate:"required,max=20"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty" validate:"omitempty,max=25"`
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber,omitempty" validate:"omitempty,max=25"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty" validate:"omitempty,max=50"`
	Iccid                   string `json:"iccid,omitempty" validate:"omitempty,max=20"`
	Imsi                    string `json:"imsi,omitempty" validate:"omitempty,max=20"`
	MeterType               string `json:"meterType,omitempty" validate:"omitempty,max=25"`
	MeterSerialNumber       string `json:"meterSerialNumber,omitempty" validate:"omitempty,max=25"`
}

type BootNotificationConfirmation struct {
	CurrentTime *types.DateTime    `json:"currentTime" validate:"required"`
	Interval    int                `json:"interval" validate:"gte=0"`
	Status      RegistrationStatus `json:"status" validate:"required"`
}

func (r BootNotificationRequest) GetFeatureName() string      { return BootNotificationFeatureName }
func (c BootNotificationConfirmation) GetFeatureName() string { return BootNotificationFeatureName }

func NewBootNotificationConfirmation(currentTime *types.DateTime, interval int, status RegistrationStatus) *BootNotificationConfirmation {
	return &BootNotificationConfirmation{CurrentTime: currentTime, Interval: interval, Status: status}
}

type BootNotificationFeature struct{}

func (f BootNotificationFeature) GetFeatureName() string { return BootNotificationFeatureName }
func (f BootNotificationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(BootNotificationRequest{})
}
func (f BootNotificationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(BootNotificationConfirmation{})
}

// -------------------- DataTransfer --------------------

type DataTransferRequest struct {
	VendorId  string      `json:"vendorId" validate:"required,max=255"`
	MessageId string      `json:"messageId,omitempty" validate:"omitempty,max=50"`
	Data      interface{} `json:"data,omitempty"`
}

type DataTransferConfirmation struct {
	Status DataTransferStatus `json:"status" validate:"required"`
	Data   interface{}        `json:"data,omitempty"`
}

func (r DataTransferRequest) GetFeatureName() string      { return DataTransferFeatureName }
func (c DataTransferConfirmation) GetFeatureName() string { return DataTransferFeatureName }

func NewDataTransferConfirmation(status DataTransferStatus) *DataTransferConfirmation {
	return &DataTransferConfirmation{Status: status}
}

type DataTransferFeature struct{}

func (f DataTransferFeature) GetFeatureName() string { return DataTransferFeatureName }
func (f DataTransferFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(DataTransferRequest{})
}
func (f DataTransferFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(DataTransferConfirmation{})
}

// -------------------- Heartbeat --------------------

type HeartbeatRequest struct{}

type HeartbeatConfirmation struct {
	CurrentTime *types.DateTime `json:"currentTime" validate:"required"`
}

func (r HeartbeatRequest) GetFeatureName() string      { return HeartbeatFeatureName }
func (c HeartbeatConfirmation) GetFeatureName() string { return HeartbeatFeatureName }

func NewHeartbeatConfirmation(currentTime *types.DateTime) *HeartbeatConfirmation {
	return &HeartbeatConfirmation{CurrentTime: currentTime}
}

type HeartbeatFeature struct{}

func (f HeartbeatFeature) GetFeatureName() string { return HeartbeatFeatureName }
func (f HeartbeatFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(HeartbeatRequest{})
}
func (f HeartbeatFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(HeartbeatConfirmation{})
}

// -------------------- MeterValues --------------------

type MeterValuesRequest struct {
	ConnectorId   int                `json:"connectorId" validate:"gte=0"`
	TransactionId *int               `json:"transactionId,omitempty"`
	MeterValue    []types.MeterValue `json:"meterValue" validate:"required,min=1,dive"`
}

type MeterValuesConfirmation struct{}

func (r MeterValuesRequest) GetFeatureName() string      { return MeterValuesFeatureName }
func (c MeterValuesConfirmation) GetFeatureName() string { return MeterValuesFeatureName }

func NewMeterValuesConfirmation() *MeterValuesConfirmation {
	return &MeterValuesConfirmation{}
}

type MeterValuesFeature struct{}

func (f MeterValuesFeature) GetFeatureName() string { return MeterValuesFeatureName }
func (f MeterValuesFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(MeterValuesRequest{})
}
func (f MeterValuesFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(MeterValuesConfirmation{})
}

// -------------------- StartTransaction --------------------

type StartTransactionRequest struct {
	ConnectorId   int             `json:"connectorId" validate:"gt=0"`
	IdTag         string          `json:"idTag" validate:"required,max=20"`
	MeterStart    int             `json:"meterStart" validate:"gte=0"`
	ReservationId *int            `json:"reservationId,omitempty"`
	Timestamp     *types.DateTime `json:"timestamp" validate:"required"`
}

type StartTransactionConfirmation struct {
	IdTagInfo     *types.IdTagInfo `json:"idTagInfo" validate:"required"`
	TransactionId int              `json:"transactionId"`
}

func (r StartTransactionRequest) GetFeatureName() string      { return StartTransactionFeatureName }
func (c StartTransactionConfirmation) GetFeatureName() string { return StartTransactionFeatureName }

func NewStartTransactionConfirmation(idTagInfo *types.IdTagInfo, transactionId int) *StartTransactionConfirmation {
	return &StartTransactionConfirmation{IdTagInfo: idTagInfo, TransactionId: transactionId}
}

type StartTransactionFeature struct{}

func (f StartTransactionFeature) GetFeatureName() string { return StartTransactionFeatureName }
func (f StartTransactionFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(StartTransactionRequest{})
}
func (f StartTransactionFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(StartTransactionConfirmation{})
}

// -------------------- StatusNotification --------------------

type StatusNotificationRequest struct {
	ConnectorId     int                  `json:"connectorId" validate:"gte=0"`
	ErrorCode       ChargePointErrorCode `json:"errorCode" validate:"required"`
	Info            string               `json:"info,omitempty" validate:"omitempty,max=50"`
	Status          ChargePointStatus    `json:"status" validate:"required"`
	Timestamp       *types.DateTime      `json:"timestamp,omitempty"`
	VendorId        string               `json:"vendorId,omitempty" validate:"omitempty,max=255"`
	VendorErrorCode string               `json:"vendorErrorCode,omitempty" validate:"omitempty,max=50"`
}

type StatusNotificationConfirmation struct{}

func (r StatusNotificationRequest) GetFeatureName() string {
	return StatusNotificationFeatureName
}
func (c StatusNotificationConfirmation) GetFeatureName() string {
	return StatusNotificationFeatureName
}

func NewStatusNotificationConfirmation() *StatusNotificationConfirmation {
	return &StatusNotificationConfirmation{}
}

type StatusNotificationFeature struct{}

func (f StatusNotificationFeature) GetFeatureName() string { return StatusNotificationFeatureName }
func (f StatusNotificationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(StatusNotificationRequest{})
}
func (f StatusNotificationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(StatusNotificationConfirmation{})
}

// -------------------- StopTransaction --------------------

type StopTransactionRequest struct {
	IdTag           string             `json:"idTag,omitempty" validate:"omitempty,max=20"`
	MeterStop       int                `json:"meterStop" validate:"gte=0"`
	Timestamp       *types.DateTime    `json:"timestamp" validate:"required"`
	TransactionId   int                `json:"transactionId"`
	Reason          Reason             `json:"reason,omitempty"`
	TransactionData []types.MeterValue `json:"transactionData,omitempty" validate:"omitempty,dive"`
}

type StopTransactionConfirmation struct {
	IdTagInfo *types.IdTagInfo `json:"idTagInfo,omitempty"`
}

func (r StopTransactionRequest) GetFeatureName() string      { return StopTransactionFeatureName }
func (c StopTransactionConfirmation) GetFeatureName() string { return StopTransactionFeatureName }

func NewStopTransactionConfirmation() *StopTransactionConfirmation {
	return &StopTransactionConfirmation{}
}

type StopTransactionFeature struct{}

func (f StopTransactionFeature) GetFeatureName() string { return StopTransactionFeatureName }
func (f StopTransactionFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(StopTransactionRequest{})
}
func (f StopTransactionFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(StopTransactionConfirmation{})
}
