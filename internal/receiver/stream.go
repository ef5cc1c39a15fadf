package receiver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rushmanagement/rushnotify/internal/logging"
)

const defaultReconnectDelay = 5 * time.Second

// StreamSource reads push messages from the backend's websocket stream.
// Each text frame is one push message.
type StreamSource struct {
	URL            string
	Token          string
	ReconnectDelay time.Duration
	Log            logging.Logger

	dialer *websocket.Dialer
}

// NewStreamSource creates a stream source for url.
func NewStreamSource(url, token string, log logging.Logger) *StreamSource {
	return &StreamSource{
		URL:            url,
		Token:          token,
		ReconnectDelay: defaultReconnectDelay,
		Log:            logging.WithComponent(log, "stream"),
		dialer:         websocket.DefaultDialer,
	}
}

// Run feeds frames into rc until ctx is cancelled. Dropped connections are
// re-established after ReconnectDelay; messages are never replayed.
func (s *StreamSource) Run(ctx context.Context, rc *Receiver) error {
	for {
		err := s.session(ctx, rc)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, ErrStopped) {
			return err
		}
		s.Log.WithError(err).WithField("retry_in", s.ReconnectDelay).Warn("push stream disconnected")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.ReconnectDelay):
		}
	}
}

func (s *StreamSource) session(ctx context.Context, rc *Receiver) error {
	headers := http.Header{}
	if s.Token != "" {
		headers.Set("Authorization", "Bearer "+s.Token)
	}

	dialer := s.dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, s.URL, headers)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return err
	}
	defer conn.Close()
	s.Log.WithField("url", s.URL).Info("push stream connected")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if err := rc.Push(data); err != nil {
			return err
		}
	}
}
