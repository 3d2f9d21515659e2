package notifier

import (
	"central_system/common"
	"central_system/notifier"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
}

const (
	requestSubject = "request"
	envVarNatsUrl  = "NATS_URL"
)

// Function handles one operator command: it receives the target charge point
// id and the raw payload, and must deliver exactly one common.Response on the
// channel.
type Function func(string, []byte, chan common.Response)

type natsCentralSystemNotifier struct {
	notification chan notifier.Notification // eventos del CS hacia el bus
	connection   *nats.Conn
	handlers     map[string]Function
	timeout      time.Duration // tiempo de espera de las solicitudes
}

func New() *natsCentralSystemNotifier {
	return &natsCentralSystemNotifier{
		handlers: make(map[string]Function),
		timeout:  30 * time.Second,
	}
}

func (ncs *natsCentralSystemNotifier) SetTimeout(timeout time.Duration) {
	ncs.timeout = timeout
}

func (ncs natsCentralSystemNotifier) Timeout() time.Duration {
	return ncs.timeout
}

func (ncs *natsCentralSystemNotifier) AddHandler(action string, fn Function) {
	ncs.handlers[action] = fn
}

func (ncs *natsCentralSystemNotifier) SetChannel(notification chan notifier.Notification) {
	ncs.notification = notification
}

// notificationFromCentralSystem publica cada evento del CS en su topic.
func (ncs natsCentralSystemNotifier) notificationFromCentralSystem() {
	for n := range ncs.notification {
		bt, err := json.Marshal(n.Data)
		if err != nil {
			log.Errorf("couldn't marshal notification for %v: %v", n.Topic, err)
			continue
		}
		if err := ncs.connection.Publish(n.Topic, bt); err != nil {
			log.Errorf("couldn't publish on %v: %v", n.Topic, err)
		}
	}
}

// requestHandler implementa el patron request/reply de Nats.
func (ncs *natsCentralSystemNotifier) requestHandler() {
	var Validator = validator.New()

	_, err := ncs.connection.Subscribe(requestSubject, func(m *nats.Msg) {
		var command common.Command
		if err := json.Unmarshal(m.Data, &command); err != nil {
			ncs.respondError(m, "command.format.not.valid", "El comando no es válido")
			return
		}
		log.Printf("RequestHandler, %+v", string(m.Data))

		if err := Validator.Struct(&command); err != nil {
			ncs.respondError(m, "command.format.not.valid", "El comando no es válido")
			return
		}

		fn, exists := ncs.handlers[command.Action]
		if !exists {
			ncs.respondError(m, "command.action.not.found", fmt.Sprintf("No existe la acción \"%v\"", command.Action))
			return
		}

		responseChannel := make(chan common.Response, 1)
		payload, _ := json.Marshal(command.Payload)

		go fn(command.ChargePointId, payload, responseChannel)

		select {
		case response := <-responseChannel:
			bt, _ := json.Marshal(response)
			log.Printf("RequestHandler => Response, %v", string(bt))
			_ = m.Respond(bt)
		case <-time.After(ncs.timeout):
			ncs.respondError(m, "request.timeout", "Ha caducado el tiempo de respuesta de la solicitud")
		}
	})
	if err != nil {
		log.Errorf("couldn't subscribe to %v: %v", requestSubject, err)
	}
}

func (ncs *natsCentralSystemNotifier) respondError(m *nats.Msg, code string, message string) {
	bt, _ := json.Marshal(common.Response{
		Err: &common.Error{Code: code, Message: message},
	})
	log.Errorf("%v", string(bt))
	_ = m.Respond(bt)
}

func (ncs *natsCentralSystemNotifier) Start() {
	url, ok := os.LookupEnv(envVarNatsUrl)
	if !ok {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url)
	if err != nil {
		log.Fatal(err)
	}
	ncs.connection = nc
	go ncs.notificationFromCentralSystem()
	go ncs.requestHandler()
}

func (ncs *natsCentralSystemNotifier) Stop() {
	if ncs.connection != nil {
		ncs.connection.Close()
		log.Info("NatsStopped")
	}
}
