package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var ErrNotConnected = errors.New("websocket not connected")

type WSState string

const (
	WSStateDisconnected WSState = "disconnected"
	WSStateConnecting   WSState = "connecting"
	WSStateConnected    WSState = "connected"
	WSStateReconnecting WSState = "reconnecting"
	WSStateFailed       WSState = "failed"
)

// WSPublisher writes events as JSON frames to a long-lived websocket. It only writes; the
// connection is watched through CloseRead and redialed with backoff when it drops.
type WSPublisher struct {
	wsURL  string
	logger *zap.Logger

	mu    sync.RWMutex
	conn  *websocket.Conn
	state WSState

	maxReconnectAttempts int
	pingInterval         time.Duration
	writeTimeout         time.Duration
	reconnecting         atomic.Bool

	headerProvider HeaderProvider

	stopCh     chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	rootCtx    context.Context
	rootCancel context.CancelFunc
}

type WSOption func(*WSPublisher)

func WithWSHeaders(h HeaderProvider) WSOption {
	return func(p *WSPublisher) { p.headerProvider = h }
}

// WithReconnect sets how many redials follow a dropped connection; 0 disables redialing.
func WithReconnect(max int) WSOption {
	return func(p *WSPublisher) { p.maxReconnectAttempts = max }
}

func WithPingInterval(d time.Duration) WSOption {
	return func(p *WSPublisher) {
		if d > 0 {
			p.pingInterval = d
		}
	}
}

func WithWriteTimeout(d time.Duration) WSOption {
	return func(p *WSPublisher) {
		if d > 0 {
			p.writeTimeout = d
		}
	}
}

func NewWSPublisher(wsURL string, logger *zap.Logger, opts ...WSOption) *WSPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &WSPublisher{
		wsURL:                strings.TrimSpace(wsURL),
		logger:               logger,
		state:                WSStateDisconnected,
		maxReconnectAttempts: 5,
		pingInterval:         30 * time.Second,
		writeTimeout:         5 * time.Second,
		stopCh:               make(chan struct{}),
	}
	p.rootCtx, p.rootCancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect dials once. On failure the background redial loop is started and the dial error
// returned, so the caller may treat the publisher as best-effort.
func (p *WSPublisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	if p.state == WSStateConnected || p.state == WSStateConnecting {
		p.mu.Unlock()
		return nil
	}
	p.state = WSStateConnecting
	p.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := p.dial(dialCtx)
	if err != nil {
		p.setState(WSStateFailed)
		p.scheduleReconnect()
		return err
	}
	p.attach(conn)
	return nil
}

func (p *WSPublisher) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, p.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      p.buildHeaders(),
	})
	return conn, err
}

func (p *WSPublisher) attach(conn *websocket.Conn) {
	readCtx := conn.CloseRead(p.rootCtx)
	p.mu.Lock()
	p.conn = conn
	p.state = WSStateConnected
	p.mu.Unlock()
	p.logger.Info("notify_ws_connected", zap.String("url", p.wsURL))

	p.wg.Add(2)
	go p.watch(conn, readCtx)
	go p.pingLoop(conn, readCtx)
}

func (p *WSPublisher) watch(conn *websocket.Conn, readCtx context.Context) {
	defer p.wg.Done()
	select {
	case <-p.stopCh:
	case <-readCtx.Done():
		if !p.isStopping() {
			p.drop(conn, "peer closed")
		}
	}
}

func (p *WSPublisher) pingLoop(conn *websocket.Conn, readCtx context.Context) {
	defer p.wg.Done()
	t := time.NewTicker(p.pingInterval)
	defer t.Stop()
	consecutivePingFailures := 0
	for {
		select {
		case <-p.stopCh:
			return
		case <-readCtx.Done():
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(readCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				consecutivePingFailures = 0
				continue
			}
			consecutivePingFailures++
			if consecutivePingFailures >= 2 {
				if !p.isStopping() {
					p.drop(conn, "ping failure")
				}
				return
			}
		}
	}
}

// drop forgets conn if it is still current and starts redialing.
func (p *WSPublisher) drop(conn *websocket.Conn, reason string) {
	p.mu.Lock()
	current := p.conn == conn
	if current {
		p.conn = nil
		p.state = WSStateDisconnected
	}
	p.mu.Unlock()
	if !current {
		return
	}
	_ = conn.Close(websocket.StatusGoingAway, reason)
	p.logger.Warn("notify_ws_disconnected", zap.String("url", p.wsURL), zap.String("reason", reason))
	p.scheduleReconnect()
}

func (p *WSPublisher) scheduleReconnect() {
	if p.maxReconnectAttempts <= 0 || p.isStopping() {
		return
	}
	if !p.reconnecting.CompareAndSwap(false, true) {
		return
	}
	p.setState(WSStateReconnecting)

	go func() {
		defer p.reconnecting.Store(false)
		for attempt := 1; attempt <= p.maxReconnectAttempts; attempt++ {
			select {
			case <-p.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(p.rootCtx, 10*time.Second)
			conn, err := p.dial(dialCtx)
			cancel()
			if err != nil {
				continue
			}
			if p.isStopping() {
				_ = conn.Close(websocket.StatusNormalClosure, "close")
				return
			}
			p.attach(conn)
			return
		}
		p.setState(WSStateFailed)
		p.logger.Error("notify_ws_reconnect_failed", zap.String("url", p.wsURL), zap.Int("attempts", p.maxReconnectAttempts))
	}()
}

func (p *WSPublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	wctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, ev); err != nil {
		p.drop(conn, "write failure")
		return err
	}
	return nil
}

// State reports the connection state.
func (p *WSPublisher) State() WSState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *WSPublisher) setState(s WSState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *WSPublisher) Close(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.mu.Lock()
	conn := p.conn
	p.conn = nil
	p.state = WSStateDisconnected
	p.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	p.rootCancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (p *WSPublisher) isStopping() bool {
	select {
	case <-p.stopCh:
		return true
	default:
		return false
	}
}

func (p *WSPublisher) buildHeaders() http.Header {
	hdr := http.Header{}
	if p.headerProvider == nil {
		return hdr
	}
	for k, v := range p.headerProvider() {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		hdr.Set(k, v)
	}
	return hdr
}
