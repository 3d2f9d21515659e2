package ocppj

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"central_system/ocpp"
)

func TestParseMessage_Call(t *testing.T) {
	message, decodeErr := ParseMessage([]byte(`[2,"19223201","BootNotification",{"chargePointVendor":"VendorX","chargePointModel":"SingleSocketCharger"}]`))
	require.Nil(t, decodeErr)
	call, ok := message.(*Call)
	require.True(t, ok)
	assert.Equal(t, CALL, call.GetMessageTypeId())
	assert.Equal(t, "19223201", call.GetUniqueId())
	assert.Equal(t, "BootNotification", call.Action)
	assert.JSONEq(t, `{"chargePointVendor":"VendorX","chargePointModel":"SingleSocketCharger"}`, string(call.Payload))
}

func TestParseMessage_CallResult(t *testing.T) {
	message, decodeErr := ParseMessage([]byte(`[3,"19223201",{"status":"Accepted","interval":300}]`))
	require.Nil(t, decodeErr)
	result, ok := message.(*CallResult)
	require.True(t, ok)
	assert.Equal(t, CALL_RESULT, result.GetMessageTypeId())
	assert.Equal(t, "19223201", result.GetUniqueId())
}

func TestParseMessage_CallError(t *testing.T) {
	message, decodeErr := ParseMessage([]byte(`[4,"19223201","NotSupported","action not supported",{"detail":"x"}]`))
	require.Nil(t, decodeErr)
	callError, ok := message.(*CallError)
	require.True(t, ok)
	assert.Equal(t, CALL_ERROR, callError.GetMessageTypeId())
	assert.Equal(t, ocpp.NotSupported, callError.ErrorCode)
	assert.Equal(t, "action not supported", callError.ErrorDescription)
}

func TestParseMessage_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"not json", `boot`},
		{"not an array", `{"action":"BootNotification"}`},
		{"too few elements", `[2,"19223201"]`},
		{"type id not a number", `["2","19223201","Heartbeat",{}]`},
		{"unknown type id", `[5,"19223201",{}]`},
		{"unique id not a string", `[2,42,"Heartbeat",{}]`},
		{"call with wrong arity", `[2,"19223201","Heartbeat",{},{}]`},
		{"call result with wrong arity", `[3,"19223201",{},{}]`},
		{"call error with wrong arity", `[4,"19223201","NotSupported","oops"]`},
		{"action not a string", `[2,"19223201",7,{}]`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			message, decodeErr := ParseMessage([]byte(tc.data))
			require.NotNil(t, decodeErr)
			assert.Nil(t, message)
			assert.Equal(t, DecodeMalformed, decodeErr.Kind)
		})
	}
}

func TestParseMessage_InvalidPayload(t *testing.T) {
	message, decodeErr := ParseMessage([]byte(`[2,"19223201","Heartbeat",[1,2,3]]`))
	require.NotNil(t, decodeErr)
	assert.Nil(t, message)
	assert.Equal(t, DecodeInvalidPayload, decodeErr.Kind)

	message, decodeErr = ParseMessage([]byte(`[3,"19223201","accepted"]`))
	require.NotNil(t, decodeErr)
	assert.Nil(t, message)
	assert.Equal(t, DecodeInvalidPayload, decodeErr.Kind)

	message, decodeErr = ParseMessage([]byte(`[4,"19223201","InternalError","boom","details"]`))
	require.NotNil(t, decodeErr)
	assert.Nil(t, message)
	assert.Equal(t, DecodeInvalidPayload, decodeErr.Kind)
}

func TestMarshal_RoundTrip(t *testing.T) {
	call := &Call{UniqueId: "msg-1", Action: "Heartbeat", Payload: json.RawMessage(`{}`)}
	data, err := call.MarshalJSON()
	require.NoError(t, err)
	parsed, decodeErr := ParseMessage(data)
	require.Nil(t, decodeErr)
	assert.Equal(t, call.UniqueId, parsed.GetUniqueId())
	assert.Equal(t, "Heartbeat", parsed.(*Call).Action)

	result := &CallResult{UniqueId: "msg-1"}
	data, err = result.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[3,"msg-1",{}]`, string(data))

	callError := &CallError{UniqueId: "msg-1", ErrorCode: ocpp.InternalError, ErrorDescription: "boom"}
	data, err = callError.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[4,"msg-1","InternalError","boom",{}]`, string(data))
}
