package ocppj

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"central_system/ocpp16/core"
)

func coreSchema() *SchemaRegistry {
	return NewSchemaRegistry(core.Profile)
}

func TestSchemaRegistry_RequiredFields(t *testing.T) {
	schema := coreSchema()
	spec, ok := schema.RequestSpec(core.BootNotificationFeatureName)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"chargePointVendor", "chargePointModel"}, spec.RequiredFields())
	assert.Contains(t, spec.OptionalFields(), "firmwareVersion")
}

func TestValidateCall_UnknownAction(t *testing.T) {
	schema := coreSchema()
	validationErr := schema.ValidateCall("GetCompositeSchedule", json.RawMessage(`{}`))
	require.NotNil(t, validationErr)
	assert.Equal(t, UnknownAction, validationErr.Kind)
}

func TestValidateCall_MissingRequiredField(t *testing.T) {
	schema := coreSchema()
	validationErr := schema.ValidateCall(core.BootNotificationFeatureName, json.RawMessage(`{"chargePointVendor":"VendorX"}`))
	require.NotNil(t, validationErr)
	assert.Equal(t, MissingField, validationErr.Kind)
	assert.Equal(t, "chargePointModel", validationErr.Field)
}

func TestValidateCall_NullCountsAsMissing(t *testing.T) {
	schema := coreSchema()
	validationErr := schema.ValidateCall(core.BootNotificationFeatureName, json.RawMessage(`{"chargePointVendor":"VendorX","chargePointModel":null}`))
	require.NotNil(t, validationErr)
	assert.Equal(t, MissingField, validationErr.Kind)
}

func TestValidateCall_UnexpectedType(t *testing.T) {
	schema := coreSchema()
	validationErr := schema.ValidateCall(core.StartTransactionFeatureName, json.RawMessage(`{"connectorId":"one","idTag":"ABC123","meterStart":0,"timestamp":"2024-05-01T10:00:00Z"}`))
	require.NotNil(t, validationErr)
	assert.Equal(t, UnexpectedType, validationErr.Kind)
	assert.Equal(t, "connectorId", validationErr.Field)
}

func TestValidateCall_ToleratesUnknownFields(t *testing.T) {
	schema := coreSchema()
	payload := json.RawMessage(`{"chargePointVendor":"VendorX","chargePointModel":"SingleSocketCharger","vendorExtension":{"foo":"bar"}}`)
	assert.Nil(t, schema.ValidateCall(core.BootNotificationFeatureName, payload))
}

func TestValidateCall_ZeroValuesArePresent(t *testing.T) {
	// meterStart 0 is a perfectly valid reading and must not read as missing.
	schema := coreSchema()
	payload := json.RawMessage(`{"connectorId":1,"idTag":"ABC123","meterStart":0,"timestamp":"2024-05-01T10:00:00Z"}`)
	assert.Nil(t, schema.ValidateCall(core.StartTransactionFeatureName, payload))
}

func TestValidateCallResult(t *testing.T) {
	schema := coreSchema()
	assert.Nil(t, schema.ValidateCallResult(core.BootNotificationFeatureName, json.RawMessage(`{"currentTime":"2024-05-01T10:00:00Z","interval":300,"status":"Accepted"}`)))

	validationErr := schema.ValidateCallResult(core.BootNotificationFeatureName, json.RawMessage(`{"currentTime":"2024-05-01T10:00:00Z","interval":300}`))
	require.NotNil(t, validationErr)
	assert.Equal(t, MissingField, validationErr.Kind)
	assert.Equal(t, "status", validationErr.Field)
}

func TestNewRequest(t *testing.T) {
	schema := coreSchema()
	request, ok := schema.NewRequest(core.HeartbeatFeatureName)
	require.True(t, ok)
	assert.IsType(t, &core.HeartbeatRequest{}, request)

	_, ok = schema.NewRequest("GetDiagnostics")
	assert.False(t, ok)
}

func TestNewConfirmation(t *testing.T) {
	schema := coreSchema()
	confirmation, ok := schema.NewConfirmation(core.StartTransactionFeatureName)
	require.True(t, ok)
	assert.IsType(t, &core.StartTransactionConfirmation{}, confirmation)
}
