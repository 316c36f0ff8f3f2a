package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"poker-pool/internal/game"
	"poker-pool/internal/p2p"
	"poker-pool/internal/protocol"
	"poker-pool/internal/store"
)

var (
	ErrNotHost         = errors.New("not_host")
	ErrNotStarted      = errors.New("session_not_started")
	ErrClosed          = errors.New("session_closed")
	ErrBallUnavailable = errors.New("ball_unavailable")
)

const (
	defaultPersistTimeout = 3 * time.Second
	persistQueueSize      = 64
)

// DeviceStore remembers the local room between runs.
type DeviceStore interface {
	SaveRoom(r game.Room) error
}

type Config struct {
	// Player is the local identity. Its id must equal the transport's peer id.
	Player     game.Player
	RoomName   string
	RoomAvatar string
	Rand       game.Rand
	Store      store.PersistenceClient
	Device     DeviceStore

	PersistTimeout time.Duration
	Now            func() time.Time
}

type command struct {
	fn    func() error
	reply chan error
}

// Session owns the local Room. A single loop goroutine applies peer messages and local
// actions, so the Room is never mutated concurrently.
type Session struct {
	transport p2p.Transport
	cfg       Config
	self      game.Player

	// Owned by the loop once started.
	room      *game.Room
	isHost    bool
	hostPeer  string
	connected bool

	cmds    chan command
	done    chan struct{}
	stopped chan struct{}
	started bool
	mu      sync.Mutex

	persistQ    chan persistJob
	persistDone chan struct{}
	closeOnce   sync.Once
}

func New(t p2p.Transport, cfg Config) *Session {
	if cfg.Store == nil {
		cfg.Store = store.Offline{}
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Now().UnixNano()))
	}
	self := cfg.Player
	if self.Hand == nil {
		self.Hand = []game.Card{}
	}
	s := &Session{
		transport:   t,
		cfg:         cfg,
		self:        self,
		cmds:        make(chan command),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		persistQ:    make(chan persistJob, persistQueueSize),
		persistDone: make(chan struct{}),
	}
	go s.persistLoop()
	return s
}

func (s *Session) PlayerID() string { return s.self.ID }

// Host opens the room and starts accepting guests. It returns the id guests join with.
func (s *Session) Host(ctx context.Context) (string, error) {
	hostID, err := s.transport.CreateHost(ctx)
	if err != nil {
		return "", err
	}
	s.self.IsHost = true
	s.room = game.NewRoom(s.cfg.RoomName, s.cfg.RoomAvatar, s.self, s.cfg.Now())
	s.isHost = true
	log.Info().Str("room_id", s.room.ID).Str("host_id", hostID).Msg("room_hosted")
	s.persist(s.room.Clone(), nil)
	s.start()
	return hostID, nil
}

// Join links to a host and announces the local player. The room converges once the host
// answers with its state.
func (s *Session) Join(ctx context.Context, hostID string) error {
	hostPeer, _, err := p2p.ParseHostID(hostID)
	if err != nil {
		return err
	}
	if err := s.transport.JoinAsGuest(ctx, hostID); err != nil {
		return err
	}
	s.self.IsHost = false
	s.room = &game.Room{
		HostID:    hostPeer,
		Players:   []game.Player{s.self},
		GameState: game.NewGameState(),
		CreatedAt: s.cfg.Now().UnixMilli(),
	}
	s.hostPeer = hostPeer
	s.connected = true
	s.start()
	s.send(hostPeer, protocol.PlayerJoined{Player: s.self})
	log.Info().Str("host_id", hostID).Str("player_id", s.self.ID).Msg("room_joined")
	return nil
}

func (s *Session) start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	go s.run()
}

func (s *Session) run() {
	defer close(s.stopped)
	events := s.transport.Events()
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.cmds:
			cmd.reply <- cmd.fn()
		case ev, ok := <-events:
			if !ok {
				events = nil
				s.connected = false
				continue
			}
			s.handleEvent(ev)
		}
	}
}

// do runs fn on the loop and waits for its result.
func (s *Session) do(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	reply := make(chan error, 1)
	select {
	case s.cmds <- command{fn: fn, reply: reply}:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) handleEvent(ev p2p.Event) {
	switch ev.Kind {
	case p2p.EventConnect:
		log.Info().Str("peer_id", ev.PeerID).Msg("peer_connected")
		if !s.isHost && ev.PeerID == s.hostPeer {
			s.connected = true
		}
	case p2p.EventData:
		msg, err := protocol.Decode(ev.Data)
		if err != nil {
			log.Warn().Err(err).Str("peer_id", ev.PeerID).Msg("message_parse_failed")
			return
		}
		s.dispatch(ev.PeerID, msg)
	case p2p.EventClose:
		s.handlePeerClosed(ev.PeerID)
	}
}

func (s *Session) handlePeerClosed(peerID string) {
	log.Info().Str("peer_id", peerID).Msg("peer_closed")
	if !s.isHost {
		if peerID == s.hostPeer {
			s.connected = false
			log.Warn().Str("peer_id", peerID).Msg("host_lost")
		}
		return
	}
	if !s.room.RemovePlayer(peerID) {
		return
	}
	s.broadcast(protocol.PlayerLeft{PlayerID: peerID})
	s.broadcastState()
	s.persist(s.room.Clone(), nil)
}

func (s *Session) send(peerID string, p protocol.Payload) {
	data, err := protocol.Encode(protocol.New(s.self.ID, p))
	if err != nil {
		log.Error().Err(err).Msg("message_encode_failed")
		return
	}
	if err := s.transport.Send(peerID, data); err != nil {
		log.Warn().Err(err).Str("peer_id", peerID).Msg("message_send_failed")
	}
}

func (s *Session) broadcast(p protocol.Payload) {
	msg := protocol.New(s.self.ID, p)
	data, err := protocol.Encode(msg)
	if err != nil {
		log.Error().Err(err).Msg("message_encode_failed")
		return
	}
	n := s.transport.Broadcast(data)
	log.Debug().Str("type", string(msg.Type)).Int("peers", n).Msg("message_broadcast")
}

func (s *Session) broadcastState() {
	s.broadcast(protocol.GameStateUpdate{GameState: s.room.GameState, Players: s.room.Players})
}

type persistJob struct {
	room *game.Room
	res  *game.RoundResult
}

// persist records room, and the finished round when res is set. Database writes run on the
// persistence worker in submission order so the loop never waits on the network.
func (s *Session) persist(room *game.Room, res *game.RoundResult) {
	if s.cfg.Device != nil {
		if err := s.cfg.Device.SaveRoom(*room); err != nil {
			log.Warn().Err(err).Str("room_id", room.ID).Msg("device_state_save_failed")
		}
	}
	if !s.isHost {
		return
	}
	select {
	case s.persistQ <- persistJob{room: room, res: res}:
	default:
		log.Warn().Str("room_id", room.ID).Msg("persist_queue_full")
	}
}

func (s *Session) persistLoop() {
	defer close(s.persistDone)
	for job := range s.persistQ {
		s.save(job)
	}
}

func (s *Session) save(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()
	room := job.room
	s.cfg.Store.SaveRoom(ctx, *room)
	if job.res == nil {
		return
	}
	rec := s.cfg.Store.SaveGameSession(ctx, store.GameSession{
		RoomID:     room.ID,
		WinnerID:   job.res.WinnerID,
		WinnerHand: job.res.Hand,
		Players:    room.Players,
		FinalState: room.GameState,
	})
	if rec != nil {
		log.Info().Str("room_id", room.ID).Str("session_id", rec.ID).Msg("game_session_saved")
	}
}

// Close stops the loop, closes the transport and flushes pending persistence.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		err = s.transport.Close()
		close(s.persistQ)
		<-s.persistDone
	})
	return err
}
