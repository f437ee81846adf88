package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultWebsocketReadBufferSize     = 10000
	defaultWebsocketWriteBufferSize    = 10000
	defaultWebSocketMaxMessageSize     = 1 << 20
	defaultWebSocketHandshakeTimeout   = 5 * time.Second
	defaultWebSocketCloseWriteDeadline = 2 * time.Second
	defaultWebSocketWriteDeadline      = 5 * time.Second

	// defaultPongWait - defaultPingInterval == is how long we give server to respond
	defaultPingInterval = 5 * time.Second
	defaultPongWait     = 7 * time.Second

	defaultInboundQueue = 16
)

var (
	ErrDial         = errors.New("unable to dial signaling server")
	ErrSendConnect  = errors.New("unable to send connect message")
	ErrClosedByPeer = errors.New("signaling connection closed by server")
	ErrConnection   = errors.New("unexpected signaling connection error")
)

type (
	Config struct {
		Logger *zerolog.Logger
		URL    string

		HandshakeTimeout time.Duration
		WriteTimeout     time.Duration
		PingInterval     time.Duration
		PongWait         time.Duration
	}

	Client struct {
		logger zerolog.Logger
		dialer *websocket.Dialer
		url    string

		writeTimeout time.Duration
		pingInterval time.Duration
		pongWait     time.Duration
	}

	// Session is one established signaling connection.
	Session struct {
		rx     <-chan []byte
		conn   *websocket.Conn
		cancel context.CancelFunc
		done   chan struct{}
		err    error
		logger zerolog.Logger
	}
)

func NewClient(cfg Config) *Client {
	c := &Client{
		logger:       cfg.Logger.With().Str("component", "websocket-client").Logger(),
		url:          cfg.URL,
		writeTimeout: orDefault(cfg.WriteTimeout, defaultWebSocketWriteDeadline),
		pingInterval: orDefault(cfg.PingInterval, defaultPingInterval),
		pongWait:     orDefault(cfg.PongWait, defaultPongWait),
		dialer: &websocket.Dialer{
			HandshakeTimeout: orDefault(cfg.HandshakeTimeout, defaultWebSocketHandshakeTimeout),
			ReadBufferSize:   defaultWebsocketReadBufferSize,
			WriteBufferSize:  defaultWebsocketWriteBufferSize,
		},
	}
	return c
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Open dials the signaling server and writes connect as the first message.
// The session lives until ctx is canceled, Close is called or the
// connection fails.
func (c *Client) Open(ctx context.Context, connect []byte) (*Session, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, errors.Join(ErrDial, err)
	}
	logger := c.logger.With().Str("url", c.url).Logger()

	if err = writeText(conn, connect, c.writeTimeout); err != nil {
		webSocketCloser(conn, &logger)
		return nil, errors.Join(ErrSendConnect, err)
	}
	logger.Debug().Int("size", len(connect)).Msg("connect message sent")

	rx := make(chan []byte, defaultInboundQueue)
	sCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		rx:     rx,
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.run(sCtx, rx, c)
	return s, nil
}

func (s *Session) run(ctx context.Context, rx chan<- []byte, c *Client) {
	var (
		wg      = &sync.WaitGroup{}
		errOnce sync.Once
		setErr  = func(err error) {
			errOnce.Do(func() { s.err = err })
		}
	)

	wg.Add(2)
	go func() {
		if err := webSocketReceiver(ctx, wg, s.conn, rx, c.pongWait, &s.logger); err != nil {
			setErr(err)
		}
		s.cancel()
	}()
	go func() {
		if err := webSocketPinger(ctx, wg, s.conn, c.pingInterval, c.writeTimeout, &s.logger); err != nil {
			setErr(err)
		}
		s.cancel()
	}()

	wg.Wait()
	webSocketCloser(s.conn, &s.logger)
	close(rx)
	close(s.done)
	s.logger.Debug().Msg("signaling session ended")
}

// Inbound delivers undecoded frames from the server. It is closed when
// the session ends.
func (s *Session) Inbound() <-chan []byte {
	return s.rx
}

// Close ends the session and waits for cleanup.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the connection is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err reports why the session ended. It is nil for a local close and only
// valid after Done is closed.
func (s *Session) Err() error {
	return s.err
}

func writeText(conn *websocket.Conn, b []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if _, err = w.Write(b); err != nil {
		return err
	}
	return w.Close()
}

func webSocketPinger(
	ctx context.Context,
	wg *sync.WaitGroup,
	conn *websocket.Conn,
	interval time.Duration,
	writeTimeout time.Duration,
	logger *zerolog.Logger,
) error {
	pingTicker := time.NewTicker(interval)
	defer func() {
		pingTicker.Stop()
		wg.Done()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pingTicker.C:
			// WriteControl may run concurrently with the reader and takes its own deadline.
			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
			if errors.Is(err, websocket.ErrCloseSent) {
				// the receiver is handling a close from the server
				return nil
			}
			if err != nil {
				logger.Error().Err(err).Msg("failed to send ping")
				return errors.Join(ErrConnection, err)
			}
			logger.Trace().Msg("ping sent")
		}
	}
}

func webSocketReceiver(
	ctx context.Context,
	wg *sync.WaitGroup,
	conn *websocket.Conn,
	rx chan<- []byte,
	pongWait time.Duration,
	logger *zerolog.Logger,
) error {
	defer wg.Done()

	// ReadMessage does not observe ctx, so unblock it by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	conn.SetReadLimit(defaultWebSocketMaxMessageSize)
	readDeadLineFunc := func(deadline time.Duration) error {
		return conn.SetReadDeadline(time.Now().Add(deadline))
	}
	conn.SetPongHandler(func(string) error {
		logger.Trace().Msg("got pong")
		return readDeadLineFunc(pongWait)
	})
	if err := readDeadLineFunc(pongWait); err != nil {
		logger.Error().Err(err).Msg("failed to set websocket read deadline")
		return errors.Join(ErrConnection, err)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("connection closed")
				return errors.Join(ErrClosedByPeer, err)
			}
			logger.Error().Err(err).Msg("unexpected error during receive")
			return errors.Join(ErrConnection, err)
		}
		// Every inbound frame counts as liveness.
		if err = readDeadLineFunc(pongWait); err != nil {
			return errors.Join(ErrConnection, err)
		}
		select {
		case rx <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func webSocketCloser(conn *websocket.Conn, logger *zerolog.Logger) {
	wsErr := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(defaultWebSocketCloseWriteDeadline))
	if wsErr != nil && !errors.Is(wsErr, websocket.ErrCloseSent) {
		logger.Debug().Err(wsErr).Msg("failed to send close frame")
	}
	wsErr = conn.Close()
	if wsErr != nil {
		logger.Error().Err(wsErr).Msg("failed to close websocket connection")
	}
}
