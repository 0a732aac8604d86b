package backend

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"synerx-dashboard/config"
	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
)

// JobStream maintains the WebSocket connection to the upstream /ws/jobs feed.
// Every message is a full job-list snapshot. When the connection drops, one
// reconnect is scheduled after a fixed delay; the connection state is
// observable in between.
type JobStream struct {
	wsURL          string
	reconnectDelay time.Duration
	onSnapshot     func(jobs []dto.JobSnapshot)

	mu    sync.RWMutex
	state constant.ConnectionState

	dial func(ctx context.Context, url string) (wsConn, error)
}

type wsConn interface {
	ReadJSON(v interface{}) error
	Close() error
}

func NewJobStream(cfg config.Backend, onSnapshot func(jobs []dto.JobSnapshot)) *JobStream {
	return &JobStream{
		wsURL:          cfg.WsURL + "/ws/jobs",
		reconnectDelay: cfg.ReconnectDelay,
		onSnapshot:     onSnapshot,
		state:          constant.ConnectionDisconnected,
		dial: func(ctx context.Context, url string) (wsConn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
	}
}

func (s *JobStream) State() constant.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *JobStream) setState(state constant.ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run connects and re-connects until ctx is cancelled.
func (s *JobStream) Run(ctx context.Context) {
	for {
		if err := s.connectOnce(ctx); err != nil {
			s.setState(constant.ConnectionError)
			zerolog.Ctx(ctx).Error().Err(err).Str("url", s.wsURL).Msg("jobs stream disconnected")
		} else {
			s.setState(constant.ConnectionDisconnected)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *JobStream) connectOnce(ctx context.Context) error {
	conn, err := s.dial(ctx, s.wsURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.setState(constant.ConnectionConnected)
	zerolog.Ctx(ctx).Info().Str("url", s.wsURL).Msg("jobs stream connected")

	// The watcher must not outlive this connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var envelope dto.JobListEnvelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if s.onSnapshot != nil {
			s.onSnapshot(envelope.Jobs)
		}
	}
}
