// Package bitflyer connects to the bitFlyer Lightning stream and
// normalizes ticker notifications into domain quotes.
package bitflyer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"exchange_go/internal/domain"
	"exchange_go/internal/infra"

	"github.com/gorilla/websocket"
)

const (
	maxRetries       = 10
	handshakeTimeout = 10 * time.Second
	readTimeout      = 60 * time.Second
)

// Worker handles the bitFlyer lightstream websocket connection. It cycles
// Disconnected -> Connecting -> Subscribed and back on transport error,
// retrying with backoff; it never terminates the process.
type Worker struct {
	wsURL    string
	channels map[string]bool
	inbox    chan<- domain.Quote

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	now       func() time.Time
}

var _ domain.FeedWorker = (*Worker)(nil)

// NewWorker creates a new feed worker delivering quotes to inbox.
func NewWorker(wsURL string, channels []string, inbox chan<- domain.Quote) *Worker {
	set := make(map[string]bool, len(channels))
	for _, ch := range channels {
		set[ch] = true
	}
	return &Worker{
		wsURL:    wsURL,
		channels: set,
		inbox:    inbox,
		now:      time.Now,
	}
}

// Connect starts the websocket connection loop.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("bitFlyer connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			infra.GlobalMetrics.RecordFeedReconnect()
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0 // Keep retrying forever, reset for backoff
			}
			delay := infra.CalculateBackoff(retryCount)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
			infra.GlobalMetrics.SetFeedConnected(false)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	infra.GlobalMetrics.SetFeedConnected(true)
	slog.Info("bitFlyer connected", slog.Int("subs", len(w.channels)))
	return nil
}

func (w *Worker) subscribe() error {
	id := 1
	for ch := range w.channels {
		req := rpcRequest{
			Version: "2.0",
			Method:  "subscribe",
			Params:  subscribeParams{Channel: ch},
			ID:      id,
		}
		id++
		b, err := json.Marshal(req)
		if err != nil {
			return err
		}
		if err := w.threadSafeWrite(websocket.TextMessage, b); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
	}
	return nil
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return domain.ErrConnectionFailed
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		if w.conn == nil {
			w.mu.RUnlock()
			return
		}
		w.conn.SetReadDeadline(w.now().Add(readTimeout))
		w.mu.RUnlock()

		_, msg, err := w.conn.ReadMessage()
		if err != nil {
			slog.Warn("bitFlyer read failed", slog.Any("error", err))
			w.closeConnection()
			return
		}
		w.handleMessage(ctx, msg)
	}
}

// handleMessage normalizes one inbound frame. Subscribe acks, unknown
// channels and malformed payloads are ignored; a valid ticker becomes a
// quote stamped with the local clock.
func (w *Worker) handleMessage(ctx context.Context, msg []byte) {
	var note rpcNotification
	if json.Unmarshal(msg, &note) != nil || note.Method != "channelMessage" {
		return
	}
	if !w.channels[note.Params.Channel] {
		return
	}

	quote := domain.Quote{
		BestBid:    note.Params.Message.BestBid,
		BestAsk:    note.Params.Message.BestAsk,
		OriginTime: note.Params.Message.Timestamp,
		ObservedAt: w.now().UTC().Format(time.RFC3339Nano),
	}

	// Ticks are delivered in arrival order; the send blocks rather than
	// dropping so a slow consumer cannot reorder or skip quotes.
	select {
	case w.inbox <- quote:
		infra.GlobalMetrics.RecordTick()
	case <-ctx.Done():
	}
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// IsConnected reports whether the worker currently holds a live connection.
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Disconnect stops the worker and waits for its goroutines.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
