package common

// Command is the operator request received over NATS: which action to run
// against which charge point.
type Command struct {
	Action        string      `json:"action" validate:"required"`
	ChargePointId string      `json:"chargePointId" validate:"required"`
	Payload       interface{} `json:"payload"`
}
