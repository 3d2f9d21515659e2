package notifier

// Notification is an event from the central system to be published on the
// message bus: the topic names the OCPP event, Data carries the payload plus
// the charge point id.
type Notification struct {
	Topic string
	Data  map[string]interface{}
}
