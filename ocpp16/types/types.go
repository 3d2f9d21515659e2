// Package types holds the data types shared by the OCPP 1.6 feature
// profiles.
package types

import (
	"encoding/json"
	"time"

	"github.com/relvacode/iso8601"
)

// DateTime wraps time.Time with the lenient ISO8601 decoding charge points
// actually emit (with or without timezone, fractional seconds, etc.).
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) *DateTime {
	return &DateTime{Time: t}
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := iso8601.ParseString(raw)
	if err != nil {
		return err
	}
	dt.Time = parsed
	return nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.Time.Format(time.RFC3339))
}

type AuthorizationStatus string

const (
	AuthorizationStatusAccepted     AuthorizationStatus = "Accepted"
	AuthorizationStatusBlocked      AuthorizationStatus = "Blocked"
	AuthorizationStatusExpired      AuthorizationStatus = "Expired"
	AuthorizationStatusInvalid      AuthorizationStatus = "Invalid"
	AuthorizationStatusConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

// IdTagInfo carries the authorization verdict for an idTag.
type IdTagInfo struct {
	ExpiryDate  *DateTime           `json:"expiryDate,omitempty"`
	ParentIdTag string              `json:"parentIdTag,omitempty" validate:"omitempty,max=20"`
	Status      AuthorizationStatus `json:"status" validate:"required"`
}

func NewIdTagInfo(status AuthorizationStatus) *IdTagInfo {
	return &IdTagInfo{Status: status}
}

type ReadingContext string

const (
	ReadingContextSamplePeriodic   ReadingContext = "Sample.Periodic"
	ReadingContextSampleClock      ReadingContext = "Sample.Clock"
	ReadingContextTransactionBegin ReadingContext = "Transaction.Begin"
	ReadingContextTransactionEnd   ReadingContext = "Transaction.End"
)

type Measurand string

const (
	MeasurandEnergyActiveImportRegister Measurand = "Energy.Active.Import.Register"
	MeasurandPowerActiveImport          Measurand = "Power.Active.Import"
	MeasurandCurrentImport              Measurand = "Current.Import"
	MeasurandVoltage                    Measurand = "Voltage"
	MeasurandTemperature                Measurand = "Temperature"
	MeasurandSoC                        Measurand = "SoC"
)

// SampledValue is a single reading inside a MeterValue. Only value is
// mandatory; absent qualifiers carry the OCPP 1.6 defaults.
type SampledValue struct {
	Value     string         `json:"value" validate:"required"`
	Context   ReadingContext `json:"context,omitempty"`
	Format    string         `json:"format,omitempty"`
	Measurand Measurand      `json:"measurand,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Location  string         `json:"location,omitempty"`
	Unit      string         `json:"unit,omitempty"`
}

// MeterValue is one timestamped batch of sampled values.
type MeterValue struct {
	Timestamp    *DateTime      `json:"timestamp" validate:"required"`
	SampledValue []SampledValue `json:"sampledValue" validate:"required,min=1,dive"`
}
