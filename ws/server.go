package ws

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ConnectionHandler is invoked once per accepted charge point connection,
// with the identity taken from the final segment of the request path. The
// identity may be empty; the server tolerates both.
type ConnectionHandler func(identity string, channel *Channel)

// Server accepts OCPP 1.6 websocket connections. Construct with NewServer or
// NewTLSServer, install a ConnectionHandler, then Start.
type Server struct {
	upgrader          websocket.Upgrader
	connectionHandler ConnectionHandler
	httpServer        *http.Server
	certificatePath   string
	certificateKey    string
	tlsConfig         *tls.Config
	log               *logrus.Logger
}

func NewServer(logger *logrus.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			Subprotocols:    []string{Subprotocol},
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger,
	}
}

// NewTLSServer serves wss with the given server certificate. Client
// certificate policy comes from tlsConfig (e.g. RequireAndVerifyClientCert
// with a CA pool).
func NewTLSServer(certificatePath string, certificateKey string, tlsConfig *tls.Config, logger *logrus.Logger) *Server {
	server := NewServer(logger)
	server.certificatePath = certificatePath
	server.certificateKey = certificateKey
	server.tlsConfig = tlsConfig
	return server
}

func (s *Server) SetConnectionHandler(handler ConnectionHandler) {
	s.connectionHandler = handler
}

// Start listens on port and blocks until the server stops. listenPath is a
// mux route whose last variable is the charge point identity, e.g. "/{ws}".
// A bare "/" is also accepted and yields an empty identity.
func (s *Server) Start(port int, listenPath string) error {
	router := mux.NewRouter()
	router.HandleFunc(listenPath, s.handleUpgrade)
	router.HandleFunc("/", s.handleUpgrade)
	s.httpServer = &http.Server{
		Addr:      fmt.Sprintf(":%v", port),
		Handler:   router,
		TLSConfig: s.tlsConfig,
	}
	if s.certificatePath != "" && s.certificateKey != "" {
		return s.httpServer.ListenAndServeTLS(s.certificatePath, s.certificateKey)
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	identity := ""
	for _, value := range mux.Vars(r) {
		identity = value
	}
	if identity == "" {
		identity = strings.Trim(r.URL.Path, "/")
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("upgrade failed for %v: %v", r.RemoteAddr, err)
		return
	}
	channel := newChannel(conn, identity, s.log)
	channel.startPing()
	if s.connectionHandler != nil {
		s.connectionHandler(identity, channel)
	} else {
		_ = channel.Close()
	}
}
