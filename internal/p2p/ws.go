package p2p

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait       = 5 * time.Second
	defaultPing     = 15 * time.Second
	defaultSendSize = 32
	eventBuffer     = 64
)

type Options struct {
	PeerID          string
	ProtocolVersion string
	// ListenAddr is where a host binds; ignored by guests.
	ListenAddr string
	// AdvertiseAddr is the host:port placed in the host id. Defaults to the bound address.
	AdvertiseAddr string
	SetupTimeout  time.Duration
	PingInterval  time.Duration
	SendBuffer    int
}

func (o Options) withDefaults() Options {
	if o.ListenAddr == "" {
		o.ListenAddr = ":0"
	}
	if o.SetupTimeout <= 0 {
		o.SetupTimeout = DefaultSetupTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPing
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendSize
	}
	return o
}

type peer struct {
	id   string
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool

	// flushed is closed when the write loop has exited.
	flushed chan struct{}
}

// trySend queues msg without blocking. It reports false when the peer is closed or its
// buffer is full.
func (p *peer) trySend(msg []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

func (p *peer) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.send)
}

// WSTransport is a Transport over websockets. The host serves GET /p2p and guests dial it.
type WSTransport struct {
	opts     Options
	upgrader websocket.Upgrader
	dialer   *websocket.Dialer

	mu     sync.Mutex
	state  State
	hostID string
	peers  map[string]*peer
	server *http.Server

	events    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewWSTransport(opts Options) *WSTransport {
	opts = opts.withDefaults()
	return &WSTransport{
		opts: opts,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: opts.SetupTimeout,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
		dialer: &websocket.Dialer{HandshakeTimeout: opts.SetupTimeout},
		peers:  map[string]*peer{},
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

func (t *WSTransport) LocalID() string { return t.opts.PeerID }

func (t *WSTransport) Events() <-chan Event { return t.events }

func (t *WSTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// HostID is the identifier returned by CreateHost, empty on guests.
func (t *WSTransport) HostID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hostID
}

// beginSetup moves an idle transport to connecting.
func (t *WSTransport) beginSetup() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateIdle:
		t.state = StateConnecting
		return nil
	case StateClosed:
		return ErrTransportClosed
	default:
		return fmt.Errorf("%w: transport already %s", ErrConnectionSetup, t.state)
	}
}

func (t *WSTransport) failSetup(err error) error {
	t.mu.Lock()
	if t.state == StateConnecting {
		t.state = StateIdle
	}
	t.mu.Unlock()
	return fmt.Errorf("%w: %w", ErrConnectionSetup, err)
}

// CreateHost binds the listener and starts accepting guests. The returned id is
// "<peer id>@<advertised address>".
func (t *WSTransport) CreateHost(ctx context.Context) (string, error) {
	if err := t.beginSetup(); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, t.opts.SetupTimeout)
	defer cancel()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", t.opts.ListenAddr)
	if err != nil {
		return "", t.failSetup(err)
	}
	addr := t.opts.AdvertiseAddr
	if addr == "" {
		addr = advertisable(ln.Addr())
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/p2p", t.handleUpgrade)
	srv := &http.Server{Handler: r, ReadHeaderTimeout: t.opts.SetupTimeout}

	t.mu.Lock()
	if t.state != StateConnecting {
		t.mu.Unlock()
		_ = ln.Close()
		return "", ErrTransportClosed
	}
	t.server = srv
	t.hostID = FormatHostID(t.opts.PeerID, addr)
	t.state = StateOpen
	hostID := t.hostID
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("p2p_serve_error")
		}
	}()
	log.Info().Str("host_id", hostID).Msg("p2p_host_listening")
	return hostID, nil
}

func advertisable(a net.Addr) string {
	tcp, ok := a.(*net.TCPAddr)
	if !ok || tcp.IP == nil || tcp.IP.IsUnspecified() {
		if ok {
			return net.JoinHostPort("127.0.0.1", strconv.Itoa(tcp.Port))
		}
		return a.String()
	}
	return tcp.String()
}

func (t *WSTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	peerID := r.Header.Get(HeaderPeerID)
	if peerID == "" || peerID == t.opts.PeerID {
		http.Error(w, "invalid_peer_id", http.StatusBadRequest)
		return
	}
	if v := r.Header.Get(HeaderProtocolVersion); v != t.opts.ProtocolVersion {
		log.Warn().Str("peer_id", peerID).Str("version", v).Msg("p2p_version_mismatch")
		http.Error(w, "protocol_version_mismatch", http.StatusUpgradeRequired)
		return
	}
	h := http.Header{}
	h.Set(HeaderPeerID, t.opts.PeerID)
	h.Set(HeaderProtocolVersion, t.opts.ProtocolVersion)
	conn, err := t.upgrader.Upgrade(w, r, h)
	if err != nil {
		return
	}
	p, err := t.register(peerID, conn)
	if err != nil {
		_ = conn.Close()
		return
	}
	log.Info().Str("peer_id", peerID).Str("remote", r.RemoteAddr).Msg("p2p_guest_connected")
	go t.writeLoop(p)
	t.readLoop(p)
}

// JoinAsGuest dials the host named by hostID and returns once the link is open.
func (t *WSTransport) JoinAsGuest(ctx context.Context, hostID string) error {
	hostPeer, addr, err := ParseHostID(hostID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionSetup, err)
	}
	if err := t.beginSetup(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, t.opts.SetupTimeout)
	defer cancel()

	h := http.Header{}
	h.Set(HeaderPeerID, t.opts.PeerID)
	h.Set(HeaderProtocolVersion, t.opts.ProtocolVersion)
	conn, resp, err := t.dialer.DialContext(ctx, "ws://"+addr+"/p2p", h)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return t.failSetup(err)
	}
	if got := resp.Header.Get(HeaderPeerID); got != hostPeer {
		_ = conn.Close()
		return t.failSetup(fmt.Errorf("host answered as %q, want %q", got, hostPeer))
	}
	if v := resp.Header.Get(HeaderProtocolVersion); v != t.opts.ProtocolVersion {
		_ = conn.Close()
		return t.failSetup(fmt.Errorf("host protocol %q, want %q", v, t.opts.ProtocolVersion))
	}
	p, err := t.register(hostPeer, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	t.mu.Lock()
	if t.state == StateConnecting {
		t.state = StateOpen
	}
	t.mu.Unlock()
	log.Info().Str("host_id", hostID).Msg("p2p_joined_host")
	go t.writeLoop(p)
	go t.readLoop(p)
	return nil
}

// register adds an open peer, replacing an older link with the same id. Both loops must be
// started by the caller.
func (t *WSTransport) register(id string, conn *websocket.Conn) (*peer, error) {
	p := &peer{id: id, conn: conn, send: make(chan []byte, t.opts.SendBuffer), flushed: make(chan struct{})}
	t.mu.Lock()
	if t.state == StateClosed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	old := t.peers[id]
	t.peers[id] = p
	t.wg.Add(2)
	t.mu.Unlock()

	if old != nil {
		log.Info().Str("peer_id", id).Msg("p2p_peer_replaced")
		old.close()
		_ = old.conn.Close()
	}
	t.emit(Event{Kind: EventConnect, PeerID: id})
	return p, nil
}

func (t *WSTransport) unregister(p *peer) {
	t.mu.Lock()
	current := t.peers[p.id] == p
	if current {
		delete(t.peers, p.id)
	}
	t.mu.Unlock()

	p.close()
	_ = p.conn.Close()
	if current {
		t.emit(Event{Kind: EventClose, PeerID: p.id})
	}
}

func (t *WSTransport) readLoop(p *peer) {
	defer t.wg.Done()
	defer t.unregister(p)

	pongWait := 2 * t.opts.PingInterval
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("peer_id", p.id).Msg("p2p_read_error")
			}
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		t.emit(Event{Kind: EventData, PeerID: p.id, Data: msg})
	}
}

// writeLoop drains p.send. Once the channel is closed it writes the queued frames, then a
// normal close frame, and exits.
func (t *WSTransport) writeLoop(p *peer) {
	defer t.wg.Done()
	defer close(p.flushed)
	ticker := time.NewTicker(t.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-p.send:
			if !ok {
				_ = p.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return
			}
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				_ = p.conn.Close()
				return
			}
		case <-ticker.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = p.conn.Close()
				return
			}
		}
	}
}

// emit delivers ev unless the transport is shutting down.
func (t *WSTransport) emit(ev Event) {
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

func (t *WSTransport) lookup(peerID string) (*peer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateClosed {
		return nil, ErrTransportClosed
	}
	p, ok := t.peers[peerID]
	if !ok {
		return nil, ErrPeerNotFound
	}
	return p, nil
}

// Send queues data for one peer. A frame that does not fit the peer's buffer is dropped.
func (t *WSTransport) Send(peerID string, data []byte) error {
	p, err := t.lookup(peerID)
	if err != nil {
		return err
	}
	if !p.trySend(data) {
		log.Warn().Str("peer_id", peerID).Msg("p2p_send_dropped")
	}
	return nil
}

// Broadcast queues data for every open peer and returns how many accepted it.
func (t *WSTransport) Broadcast(data []byte) int {
	t.mu.Lock()
	peers := make([]*peer, 0, len(t.peers))
	for _, p := range t.peers {
		peers = append(peers, p)
	}
	t.mu.Unlock()

	sent := 0
	for _, p := range peers {
		if p.trySend(data) {
			sent++
		}
	}
	return sent
}

func (t *WSTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.peers) > 0
}

func (t *WSTransport) Peers() []string {
	t.mu.Lock()
	out := make([]string, 0, len(t.peers))
	for id := range t.peers {
		out = append(out, id)
	}
	t.mu.Unlock()
	sort.Strings(out)
	return out
}

// Close stops the listener and shuts every link down. Frames already queued are flushed and
// followed by a normal close frame, bounded by writeWait, before the sockets are closed. Close
// waits for all connection goroutines; the events channel is closed before it returns.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.mu.Lock()
		t.state = StateClosed
		peers := t.peers
		t.peers = map[string]*peer{}
		srv := t.server
		t.mu.Unlock()

		if srv != nil {
			err = errors.Join(err, ignoreClosed(srv.Close()))
		}
		for _, p := range peers {
			p.close()
		}
		drain := time.NewTimer(writeWait)
	flush:
		for _, p := range peers {
			select {
			case <-p.flushed:
			case <-drain.C:
				log.Warn().Str("peer_id", p.id).Msg("p2p_flush_timeout")
				break flush
			}
		}
		drain.Stop()
		for _, p := range peers {
			err = errors.Join(err, ignoreClosed(p.conn.Close()))
		}
		t.wg.Wait()
		close(t.events)
	})
	return err
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
