package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"central_system/actions"
	notifier "central_system/notifier/nats"
	"central_system/ocpp16/core"
	"central_system/ocpp16/firmware"
	"central_system/ocpp16/reservation"
	"central_system/ocppj"
	"central_system/ws"
)

const (
	defaultListenPort          = 8887
	defaultHeartbeatInterval   = 600
	envVarServerPort           = "SERVER_LISTEN_PORT"
	envVarTls                  = "TLS_ENABLED"
	envVarCaCertificate        = "CA_CERTIFICATE_PATH"
	envVarServerCertificate    = "SERVER_CERTIFICATE_PATH"
	envVarServerCertificateKey = "SERVER_CERTIFICATE_KEY_PATH"
	envVarHeartbeatInterval    = "HEARTBEAT_INTERVAL"
)

const (
	GET_CONFIGURATION        = "get.configuration"
	CHANGE_CONFIGURATION     = "change.configuration"
	CHANGE_AVAILABILITY      = "change.avalability"
	RESERVE_NOW              = "reserve.now"
	CANCEL_RESERVATION       = "cancel.reservation"
	RESET                    = "reset"
	REMOTE_START_TRANSACTION = "remote.start.transaction"
	REMOTE_STOP_TRANSACTION  = "remote.stop.transaction"
	UNLOCK_CONNECTOR         = "unlock.connector"
	CLEAR_CACHE              = "clear.cache"
)

var log *logrus.Logger

func envInt(name string, fallback int) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("ignoring %v=%v: %v", name, raw, err)
		return fallback
	}
	return value
}

func setupServer() *ws.Server {
	return ws.NewServer(log)
}

func setupTlsServer() *ws.Server {
	var certPool *x509.CertPool
	// Load CA certificates
	caCertificate, ok := os.LookupEnv(envVarCaCertificate)
	if !ok {
		log.Infof("no %v found, using system CA pool", envVarCaCertificate)
		systemPool, err := x509.SystemCertPool()
		if err != nil {
			log.Fatalf("couldn't get system CA pool: %v", err)
		}
		certPool = systemPool
	} else {
		certPool = x509.NewCertPool()
		data, err := os.ReadFile(caCertificate)
		if err != nil {
			log.Fatalf("couldn't read CA certificate from %v: %v", caCertificate, err)
		}
		ok = certPool.AppendCertsFromPEM(data)
		if !ok {
			log.Fatalf("couldn't read CA certificate from %v", caCertificate)
		}
	}
	certificate, ok := os.LookupEnv(envVarServerCertificate)
	if !ok {
		log.Fatalf("no required %v found", envVarServerCertificate)
	}
	key, ok := os.LookupEnv(envVarServerCertificateKey)
	if !ok {
		log.Fatalf("no required %v found", envVarServerCertificateKey)
	}
	return ws.NewTLSServer(certificate, key, &tls.Config{
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  certPool,
	}, log)
}

// Start function
func main() {
	var server *ws.Server
	if enabled, _ := strconv.ParseBool(os.Getenv(envVarTls)); enabled {
		server = setupTlsServer()
	} else {
		server = setupServer()
	}

	// Set this to false if the connected charge points send payloads that do
	// not survive deep validation; the structural schema check stays on.
	ocppj.SetMessageValidation(true)

	schema := ocppj.NewSchemaRegistry(core.Profile, reservation.Profile, firmware.Profile)
	registry := ocppj.NewRegistry(log)
	csHandler := NewCentralSystemHandler(envInt(envVarHeartbeatInterval, defaultHeartbeatInterval))

	server.SetConnectionHandler(func(identity string, channel *ws.Channel) {
		session := ocppj.NewSession(identity, channel, schema, log)
		csHandler.RegisterHandlers(session)
		registry.Register(session)
		log.WithField("client", identity).Info("new charge point connected")
		go func() {
			session.Run()
			log.WithField("client", identity).Info("charge point disconnected")
		}()
	})

	natsNotifier := notifier.New()
	natsNotifier.SetChannel(csHandler.NotificationChannel())
	natsNotifier.SetTimeout(3 * time.Minute)
	log.Printf("Esperar respuesta de las solicitudes: %v", natsNotifier.Timeout().String())

	coreProfileActions := actions.InitializeCoreProfileActions(registry)
	reservationProfileActions := actions.InitializeReservationProfileActions(registry)

	natsNotifier.AddHandler(RESET, coreProfileActions.Reset)
	natsNotifier.AddHandler(GET_CONFIGURATION, coreProfileActions.GetConfiguration)
	natsNotifier.AddHandler(CHANGE_CONFIGURATION, coreProfileActions.ChangeConfiguration)
	natsNotifier.AddHandler(CHANGE_AVAILABILITY, coreProfileActions.ChangeAvailability)
	natsNotifier.AddHandler(REMOTE_START_TRANSACTION, coreProfileActions.RemoteStartTransaction)
	natsNotifier.AddHandler(REMOTE_STOP_TRANSACTION, coreProfileActions.RemoteStopTransaction)
	natsNotifier.AddHandler(UNLOCK_CONNECTOR, coreProfileActions.UnlockConnector)
	natsNotifier.AddHandler(CLEAR_CACHE, coreProfileActions.ClearCache)

	natsNotifier.AddHandler(RESERVE_NOW, reservationProfileActions.ReserveNow)
	natsNotifier.AddHandler(CANCEL_RESERVATION, reservationProfileActions.CancelReservation)

	natsNotifier.Start()
	defer natsNotifier.Stop()

	// Run central system
	port := envInt(envVarServerPort, defaultListenPort)
	log.Infof("starting central system on port %v", port)
	if err := server.Start(port, "/{ws}"); err != nil {
		log.Errorf("central system stopped: %v", err)
	}

	log.Info("stopped central system")
}

func init() {
	log = logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	// Set this to DebugLevel if you want to retrieve verbose logs from the
	// ocppj and websocket layers
	log.SetLevel(logrus.InfoLevel)
}
