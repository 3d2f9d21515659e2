// Package firmware implements the firmware-management slice of OCPP 1.6 the
// central system listens to: the status notifications a charge point sends
// while uploading diagnostics or installing new firmware.
package firmware

import (
	"reflect"

	"central_system/ocpp"
)

const ProfileName = "firmware"

const (
	DiagnosticsStatusNotificationFeatureName = "DiagnosticsStatusNotification"
	FirmwareStatusNotificationFeatureName    = "FirmwareStatusNotification"
)

var Profile = ocpp.NewProfile(
	ProfileName,
	DiagnosticsStatusNotificationFeature{},
	FirmwareStatusNotificationFeature{},
)

type DiagnosticsStatus string

const (
	DiagnosticsStatusIdle         DiagnosticsStatus = "Idle"
	DiagnosticsStatusUploaded     DiagnosticsStatus = "Uploaded"
	DiagnosticsStatusUploadFailed DiagnosticsStatus = "UploadFailed"
	DiagnosticsStatusUploading    DiagnosticsStatus = "Uploading"
)

type FirmwareStatus string

const (
	FirmwareStatusDownloaded         FirmwareStatus = "Downloaded"
	FirmwareStatusDownloadFailed     FirmwareStatus = "DownloadFailed"
	FirmwareStatusDownloading        FirmwareStatus = "Downloading"
	FirmwareStatusIdle               FirmwareStatus = "Idle"
	FirmwareStatusInstallationFailed FirmwareStatus = "InstallationFailed"
	FirmwareStatusInstalling         FirmwareStatus = "Installing"
	FirmwareStatusInstalled          FirmwareStatus = "Installed"
)

type DiagnosticsStatusNotificationRequest struct {
	Status DiagnosticsStatus `json:"status" validate:"required"`
}

type DiagnosticsStatusNotificationConfirmation struct{}

func (r DiagnosticsStatusNotificationRequest) GetFeatureName() string {
	return DiagnosticsStatusNotificationFeatureName
}
func (c DiagnosticsStatusNotificationConfirmation) GetFeatureName() string {
	return DiagnosticsStatusNotificationFeatureName
}

func NewDiagnosticsStatusNotificationConfirmation() *DiagnosticsStatusNotificationConfirmation {
	return &DiagnosticsStatusNotificationConfirmation{}
}

type DiagnosticsStatusNotificationFeature struct{}

func (f DiagnosticsStatusNotificationFeature) GetFeatureName() string {
	return DiagnosticsStatusNotificationFeatureName
}
func (f DiagnosticsStatusNotificationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(DiagnosticsStatusNotificationRequest{})
}
func (f DiagnosticsStatusNotificationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(DiagnosticsStatusNotificationConfirmation{})
}

type FirmwareStatusNotificationRequest struct {
	Status FirmwareStatus `json:"status" validate:"required"`
}

type FirmwareStatusNotificationConfirmation struct{}

func (r FirmwareStatusNotificationRequest) GetFeatureName() string {
	return FirmwareStatusNotificationFeatureName
}
func (c FirmwareStatusNotificationConfirmation) GetFeatureName() string {
	return FirmwareStatusNotificationFeatureName
}

func NewFirmwareStatusNotificationConfirmation() *FirmwareStatusNotificationConfirmation {
	return &FirmwareStatusNotificationConfirmation{}
}

type FirmwareStatusNotificationFeature struct{}

func (f FirmwareStatusNotificationFeature) GetFeatureName() string {
	return FirmwareStatusNotificationFeatureName
}
func (f FirmwareStatusNotificationFeature) GetRequestType() reflect.Type {
	return reflect.TypeOf(FirmwareStatusNotificationRequest{})
}
func (f FirmwareStatusNotificationFeature) GetConfirmationType() reflect.Type {
	return reflect.TypeOf(FirmwareStatusNotificationConfirmation{})
}
