package ws

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Dial connects to a central system as a charge point. The identity is the
// final path segment of wsUrl, matching how the server extracts it.
func Dial(wsUrl string, logger *logrus.Logger) (*Channel, error) {
	dialer := websocket.Dialer{
		Subprotocols:     []string{Subprotocol},
		HandshakeTimeout: 30 * time.Second,
	}
	conn, response, err := dialer.Dial(wsUrl, http.Header{})
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("dial %v: %v (%v)", wsUrl, err, response.Status)
		}
		return nil, fmt.Errorf("dial %v: %w", wsUrl, err)
	}
	segments := strings.Split(strings.Trim(wsUrl, "/"), "/")
	identity := segments[len(segments)-1]
	channel := newChannel(conn, identity, logger)
	channel.startPing()
	return channel, nil
}
