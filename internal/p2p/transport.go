package p2p

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrConnectionSetup = errors.New("connection_setup")
	ErrTransportClosed = errors.New("transport_closed")
	ErrPeerNotFound    = errors.New("peer_not_found")
)

const (
	HeaderPeerID          = "X-Peer-ID"
	HeaderProtocolVersion = "X-Protocol-Version"
	DefaultSetupTimeout   = 10 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type EventKind string

const (
	EventConnect EventKind = "connect"
	EventData    EventKind = "data"
	EventClose   EventKind = "close"
)

type Event struct {
	Kind   EventKind
	PeerID string
	Data   []byte
}

// Transport links one host with any number of guests. Delivery is at-most-once per peer and
// frames from different peers may interleave in any order.
//
// The guest reports IsConnected as soon as JoinAsGuest returns. The host counts the guest
// only once it has registered the link, which happens right after the upgrade response is
// written, so for a short window after JoinAsGuest returns the host may still report false.
// The host's EventConnect for the guest marks the end of that window.
type Transport interface {
	CreateHost(ctx context.Context) (string, error)
	JoinAsGuest(ctx context.Context, hostID string) error
	Send(peerID string, data []byte) error
	Broadcast(data []byte) int
	IsConnected() bool
	LocalID() string
	Peers() []string
	Events() <-chan Event
	Close() error
}

// FormatHostID builds the identifier guests use to reach a host.
func FormatHostID(peerID, addr string) string {
	return peerID + "@" + addr
}

func ParseHostID(hostID string) (peerID, addr string, err error) {
	peerID, addr, ok := strings.Cut(hostID, "@")
	if !ok || peerID == "" || addr == "" {
		return "", "", fmt.Errorf("invalid host id %q", hostID)
	}
	return peerID, addr, nil
}
