package core

import (
	"reflect"
)

// Central-system-initiated core actions.

const (
	ChangeAvailabilityFeatureName     = "ChangeAvailability"
	ChangeConfigurationFeatureName    = "ChangeConfiguration"
	ClearCacheFeatureName             = "ClearCache"
	GetConfigurationFeatureName       = "GetConfiguration"
	RemoteStartTransactionFeatureName = "RemoteStartTransaction"
	RemoteStopTransactionFeatureName  = "RemoteStopTransaction"
	ResetFeatureName                  = "Reset"
	UnlockConnectorFeatureName        = "UnlockConnector"
)

type AvailabilityType string

const (
	AvailabilityTypeOperative   AvailabilityType = "Operative"
	AvailabilityTypeInoperative AvailabilityType = "Inoperative"
)

type AvailabilityStatus string

const (
	AvailabilityStatusAccepted  AvailabilityStatus = "Accepted"
	AvailabilityStatusRejected  AvailabilityStatus = "Rejected"
	AvailabilityStatusScheduled AvailabilityStatus = "Scheduled"
)

type ConfigurationStatus string

const (
	ConfigurationStatusAccepted       ConfigurationStatus = "Accepted"
	ConfigurationStatusRejected       ConfigurationStatus = "Rejected"
	ConfigurationStatusRebootRequired ConfigurationStatus = "RebootRequired"
	ConfigurationStatusNotSupported   ConfigurationStatus = "NotSupported"
)

type ClearCacheStatus string

const (
	ClearCacheStatusAccepted ClearCacheStatus = "Accepted"
	ClearCacheStatusRejected ClearCacheStatus = "Rejected"
)

type RemoteStartStopStatus string

const (
	RemoteStartStopStatusAccepted RemoteStartStopStatus = "Accepted"
	RemoteStartStopStatusRejected RemoteStartStopStatus = "Rejected"
)

type ResetType string

const (
	ResetTypeHard ResetType = "Hard"
	ResetTypeSoft ResetType = "Soft"
)

type ResetStatus string

const (
	ResetStatusAccepted ResetStatus = "Accepted"
	ResetStatusRejected ResetStatus = "Rejected"
)

type UnlockStatus string

const (
	UnlockStatusUnlocked     UnlockStatus = "Unlocked"
	UnlockStatusUnlockFailed UnlockStatus = "UnlockFailed"
	UnlockStatusNotSupported UnlockStatus = "NotSupported"
)

// -------------------- ChangeAvailability --------------------

type ChangeAvailabilityRequest struct {
	ConnectorId int              `json:"connectorId" validate:"gte=0"`
	Type        AvailabilityType `json:"type" validate:"required"`
}

type ChangeAvailabilityConfirmation struct {
	Status AvailabilityStatus `json:"status" validate:"required"`
}

func (r ChangeAvailabilityRequest) GetFeatureName() string {
	return ChangeAvailabilityFeatureName
}
func (c ChangeAvailabilityConfirmation) GetFeatureName() string {
	return ChangeAvailabilityFeatureName
}

type ChangeAvailabilityFeature struct{}

func (f ChangeAvailabilityFeature) GetFeatureName() string { return ChangeAvailabilityFeatureName }
func (f ChangeAvailabilityFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(ChangeAvailabilityRequest{})
}
func (f ChangeAvailabilityFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(ChangeAvailabilityConfirmation{})
}

// -------------------- ChangeConfiguration --------------------

type ChangeConfigurationRequest struct {
	Key   string `json:"key" validate:"required,max=50"`
	Value string `json:"value" validate:"required,max=500"`
}

type ChangeConfigurationConfirmation struct {
	Status ConfigurationStatus `json:"status" validate:"required"`
}

func (r ChangeConfigurationRequest) GetFeatureName() string {
	return ChangeConfigurationFeatureName
}
func (c ChangeConfigurationConfirmation) GetFeatureName() string {
	return ChangeConfigurationFeatureName
}

type ChangeConfigurationFeature struct{}

func (f ChangeConfigurationFeature) GetFeatureName() string { return ChangeConfigurationFeatureName }
func (f ChangeConfigurationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(ChangeConfigurationRequest{})
}
func (f ChangeConfigurationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(ChangeConfigurationConfirmation{})
}

// -------------------- ClearCache --------------------

type ClearCacheRequest struct{}

type ClearCacheConfirmation struct {
	Status ClearCacheStatus `json:"status" validate:"required"`
}

func (r ClearCacheRequest) GetFeatureName() string      { return ClearCacheFeatureName }
func (c ClearCacheConfirmation) GetFeatureName() string { return ClearCacheFeatureName }

type ClearCacheFeature struct{}

func (f ClearCacheFeature) GetFeatureName() string { return ClearCacheFeatureName }
func (f ClearCacheFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(ClearCacheRequest{})
}
func (f ClearCacheFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(ClearCacheConfirmation{})
}

// -------------------- GetConfiguration --------------------

type ConfigurationKey struct {
	Key      string  `json:"key" validate:"required,max=50"`
	Readonly bool    `json:"readonly"`
	Value    *string `json:"value,omitempty" validate:"omitempty,max=500"`
}

type GetConfigurationRequest struct {
	Key []string `json:"key,omitempty" validate:"omitempty,dive,max=50"`
}

type GetConfigurationConfirmation struct {
	ConfigurationKey []ConfigurationKey `json:"configurationKey,omitempty" validate:"omitempty,dive"`
	UnknownKey       []string           `json:"unknownKey,omitempty" validate:"omitempty,dive,max=50"`
}

func (r GetConfigurationRequest) GetFeatureName() string {
	return GetConfigurationFeatureName
}
func (c GetConfigurationConfirmation) GetFeatureName() string {
	return GetConfigurationFeatureName
}

type GetConfigurationFeature struct{}

func (f GetConfigurationFeature) GetFeatureName() string { return GetConfigurationFeatureName }
func (f GetConfigurationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(GetConfigurationRequest{})
}
func (f GetConfigurationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(GetConfigurationConfirmation{})
}

// -------------------- RemoteStartTransaction --------------------

type RemoteStartTransactionRequest struct {
	ConnectorId *int   `json:"connectorId,omitempty" validate:"omitempty,gt=0"`
	IdTag       string `json:"idTag" validate:"required,max=20"`
}

type RemoteStartTransactionConfirmation struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

func (r RemoteStartTransactionRequest) GetFeatureName() string {
	return RemoteStartTransactionFeatureName
}
func (c RemoteStartTransactionConfirmation) GetFeatureName() string {
	return RemoteStartTransactionFeatureName
}

type RemoteStartTransactionFeature struct{}

func (f RemoteStartTransactionFeature) GetFeatureName() string {
	return RemoteStartTransactionFeatureName
}
func (f RemoteStartTransactionFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(RemoteStartTransactionRequest{})
}
func (f RemoteStartTransactionFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(RemoteStartTransactionConfirmation{})
}

// -------------------- RemoteStopTransaction --------------------

type RemoteStopTransactionRequest struct {
	TransactionId int `json:"transactionId"`
}

type RemoteStopTransactionConfirmation struct {
	Status RemoteStartStopStatus `json:"status" validate:"required"`
}

func (r RemoteStopTransactionRequest) GetFeatureName() string {
	return RemoteStopTransactionFeatureName
}
func (c RemoteStopTransactionConfirmation) GetFeatureName() string {
	return RemoteStopTransactionFeatureName
}

type RemoteStopTransactionFeature struct{}

func (f RemoteStopTransactionFeature) GetFeatureName() string {
	return RemoteStopTransactionFeatureName
}
func (f RemoteStopTransactionFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(RemoteStopTransactionRequest{})
}
func (f RemoteStopTransactionFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(RemoteStopTransactionConfirmation{})
}

// -------------------- Reset --------------------

type ResetRequest struct {
	Type ResetType `json:"type" validate:"required"`
}

type ResetConfirmation struct {
	Status ResetStatus `json:"status" validate:"required"`
}

func (r ResetRequest) GetFeatureName() string      { return ResetFeatureName }
func (c ResetConfirmation) GetFeatureName() string { return ResetFeatureName }

type ResetFeature struct{}

func (f ResetFeature) GetFeatureName() string { return ResetFeatureName }
func (f ResetFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(ResetRequest{})
}
func (f ResetFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(ResetConfirmation{})
}

// -------------------- UnlockConnector --------------------

type UnlockConnectorRequest struct {
	ConnectorId int `json:"connectorId" validate:"gt=0"`
}

type UnlockConnectorConfirmation struct {
	Status UnlockStatus `json:"status" validate:"required"`
}

func (r UnlockConnectorRequest) GetFeatureName() string      { return UnlockConnectorFeatureName }
func (c UnlockConnectorConfirmation) GetFeatureName() string { return UnlockConnectorFeatureName }

type UnlockConnectorFeature struct{}

func (f UnlockConnectorFeature) GetFeatureName() string { return UnlockConnectorFeatureName }
func (f UnlockConnectorFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(UnlockConnectorRequest{})
}
func (f UnlockConnectorFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(UnlockConnectorConfirmation{})
}
