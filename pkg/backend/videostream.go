package backend

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"synerx-dashboard/config"
	"synerx-dashboard/dto"
)

// StreamVideoFrames relays base64 JPEG frames for one job from the upstream
// /ws/video-stream feed into the given callback. It returns when the upstream
// closes the stream or ctx is cancelled; the caller decides whether to retry.
func StreamVideoFrames(ctx context.Context, cfg config.Backend, jobId string, onFrame func(frame dto.FrameMessage) error) error {
	url := cfg.WsURL + "/ws/video-stream/" + jobId
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	zerolog.Ctx(ctx).Info().Str("job_id", jobId).Msg("video stream connected")

	for {
		var frame dto.FrameMessage
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := onFrame(frame); err != nil {
			return err
		}
	}
}
