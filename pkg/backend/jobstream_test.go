package backend

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"synerx-dashboard/config"
	"synerx-dashboard/constant"
	"synerx-dashboard/dto"
)

type fakeConn struct {
	messages  chan dto.JobListEnvelope
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConn(buffer int) *fakeConn {
	return &fakeConn{
		messages: make(chan dto.JobListEnvelope, buffer),
		done:     make(chan struct{}),
	}
}

func (c *fakeConn) ReadJSON(v interface{}) error {
	select {
	case msg, ok := <-c.messages:
		if !ok {
			return errors.New("connection closed")
		}
		*(v.(*dto.JobListEnvelope)) = msg
		return nil
	case <-c.done:
		return errors.New("use of closed network connection")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

func newStream(delay time.Duration, onSnapshot func(jobs []dto.JobSnapshot)) *JobStream {
	return NewJobStream(config.Backend{WsURL: "ws://backend", ReconnectDelay: delay}, onSnapshot)
}

func TestJobStreamDeliversSnapshots(t *testing.T) {
	received := make(chan []dto.JobSnapshot, 1)
	stream := newStream(time.Hour, func(jobs []dto.JobSnapshot) {
		received <- jobs
	})

	conn := newFakeConn(1)
	stream.dial = func(ctx context.Context, url string) (wsConn, error) {
		return conn, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	conn.messages <- dto.JobListEnvelope{Type: "jobs", Jobs: []dto.JobSnapshot{{Progress: 10}}}

	select {
	case jobs := <-received:
		if len(jobs) != 1 || jobs[0].Progress != 10 {
			t.Fatalf("unexpected snapshot: %+v", jobs)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected snapshot delivery")
	}

	if stream.State() != constant.ConnectionConnected {
		t.Fatalf("expected connected state, got %s", stream.State())
	}
}

func TestJobStreamSchedulesSingleReconnect(t *testing.T) {
	var dials atomic.Int32
	dialTimes := make(chan time.Time, 8)

	stream := newStream(50*time.Millisecond, nil)
	stream.dial = func(ctx context.Context, url string) (wsConn, error) {
		dials.Add(1)
		dialTimes <- time.Now()
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	first := <-dialTimes
	second := <-dialTimes
	cancel()

	if gap := second.Sub(first); gap < 40*time.Millisecond {
		t.Fatalf("expected reconnect after the fixed delay, got gap %v", gap)
	}

	if stream.State() != constant.ConnectionError {
		t.Fatalf("expected error state between attempts, got %s", stream.State())
	}
}

func TestJobStreamWatcherExitsWithConnection(t *testing.T) {
	var dials atomic.Int32
	stream := newStream(time.Millisecond, nil)
	stream.dial = func(ctx context.Context, url string) (wsConn, error) {
		dials.Add(1)
		conn := newFakeConn(0)
		conn.Close()
		return conn, nil
	}

	before := runtime.NumGoroutine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	deadline := time.After(2 * time.Second)
	for dials.Load() < 30 {
		select {
		case <-deadline:
			t.Fatalf("expected reconnect cycles, got %d", dials.Load())
		case <-time.After(time.Millisecond):
		}
	}
	during := runtime.NumGoroutine()

	if during > before+10 {
		t.Fatalf("goroutine count grew with reconnects: before=%d during=%d after %d dials", before, during, dials.Load())
	}
}

func TestJobStreamStateAfterClose(t *testing.T) {
	connected := make(chan struct{}, 1)
	conn := newFakeConn(0)

	stream := newStream(time.Hour, nil)
	stream.dial = func(ctx context.Context, url string) (wsConn, error) {
		connected <- struct{}{}
		return conn, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	<-connected
	close(conn.messages)

	deadline := time.After(time.Second)
	for stream.State() == constant.ConnectionConnected {
		select {
		case <-deadline:
			t.Fatalf("expected state change after close, still %s", stream.State())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if state := stream.State(); state != constant.ConnectionError && state != constant.ConnectionDisconnected {
		t.Fatalf("unexpected state %s", state)
	}
}
