package session

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"poker-pool/internal/game"
	"poker-pool/internal/p2p"
	"poker-pool/internal/protocol"
	"poker-pool/internal/store"
)

type frame struct {
	peer string // empty for broadcasts
	msg  protocol.Message
}

// fakeTransport hands every event to the loop synchronously and records outgoing frames.
type fakeTransport struct {
	id     string
	events chan p2p.Event

	mu     sync.Mutex
	peers  []string
	frames []frame
	once   sync.Once
}

func newFakeTransport(id string, peers ...string) *fakeTransport {
	return &fakeTransport{id: id, events: make(chan p2p.Event), peers: peers}
}

func (f *fakeTransport) CreateHost(context.Context) (string, error) {
	return p2p.FormatHostID(f.id, "fake:0"), nil
}

func (f *fakeTransport) JoinAsGuest(context.Context, string) error { return nil }

func (f *fakeTransport) record(peer string, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	f.frames = append(f.frames, frame{peer: peer, msg: msg})
	f.mu.Unlock()
}

func (f *fakeTransport) Send(peerID string, data []byte) error {
	f.record(peerID, data)
	return nil
}

func (f *fakeTransport) Broadcast(data []byte) int {
	f.record("", data)
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.peers)
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.peers) > 0
}

func (f *fakeTransport) LocalID() string { return f.id }

func (f *fakeTransport) Peers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.peers...)
}

func (f *fakeTransport) Events() <-chan p2p.Event { return f.events }

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.events) })
	return nil
}

func (f *fakeTransport) sent() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]frame{}, f.frames...)
}

func (f *fakeTransport) lastOfType(t protocol.Type) (frame, bool) {
	frames := f.sent()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].msg.Type == t {
			return frames[i], true
		}
	}
	return frame{}, false
}

func (f *fakeTransport) deliver(t *testing.T, peerID string, p protocol.Payload) {
	t.Helper()
	data, err := protocol.Encode(protocol.New(peerID, p))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.deliverRaw(t, peerID, data)
}

func (f *fakeTransport) deliverRaw(t *testing.T, peerID string, data []byte) {
	t.Helper()
	f.deliverEvent(t, p2p.Event{Kind: p2p.EventData, PeerID: peerID, Data: data})
}

func (f *fakeTransport) deliverEvent(t *testing.T, ev p2p.Event) {
	t.Helper()
	select {
	case f.events <- ev:
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not take the event")
	}
}

type recordingStore struct {
	store.Offline
	mu       sync.Mutex
	rooms    []game.Room
	sessions []store.GameSession
}

func (r *recordingStore) SaveRoom(_ context.Context, room game.Room) *game.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room)
	return &room
}

func (r *recordingStore) SaveGameSession(_ context.Context, gs store.GameSession) *store.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, gs)
	return &store.SessionRecord{ID: "s1", RoomID: gs.RoomID, WinnerID: gs.WinnerID}
}

func newHostSession(t *testing.T, tr p2p.Transport, st store.PersistenceClient) *Session {
	t.Helper()
	player := game.NewPlayer("ann", "", true)
	player.ID = tr.LocalID()
	s := New(tr, Config{
		Player:   player,
		RoomName: "table",
		Rand:     rand.New(rand.NewSource(1)),
		Store:    st,
	})
	if _, err := s.Host(context.Background()); err != nil {
		t.Fatalf("host: %v", err)
	}
	return s
}

func snapshot(t *testing.T, s *Session) *game.Room {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	room, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return room
}

func newTestRand() game.Rand {
	return rand.New(rand.NewSource(3))
}

func guestPlayer(id, name string) game.Player {
	p := game.NewPlayer(name, "", false)
	p.ID = id
	return p
}
