package p2p

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func newHost(t *testing.T) (*WSTransport, string) {
	t.Helper()
	host := NewWSTransport(Options{PeerID: "host", ProtocolVersion: "1", ListenAddr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = host.Close() })
	id, err := host.CreateHost(context.Background())
	if err != nil {
		t.Fatalf("create host: %v", err)
	}
	return host, id
}

func newGuest(t *testing.T, peerID string) *WSTransport {
	t.Helper()
	g := NewWSTransport(Options{PeerID: peerID, ProtocolVersion: "1", SetupTimeout: 2 * time.Second})
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func waitEvent(t *testing.T, tr *WSTransport, kind EventKind) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-tr.Events():
			if !ok {
				t.Fatalf("events closed while waiting for %s", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestGuestConnectedOnJoinHostOnConnectEvent(t *testing.T) {
	host, id := newHost(t)
	if id == "" {
		t.Fatal("expected a host id")
	}
	if host.IsConnected() {
		t.Fatal("host must not be connected before a guest joins")
	}
	guest := newGuest(t, "guest-1")
	if err := guest.JoinAsGuest(context.Background(), id); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !guest.IsConnected() {
		t.Fatal("guest must be connected after join")
	}
	// The host registers the guest just after the upgrade; its connect event ends that window.
	if ev := waitEvent(t, host, EventConnect); ev.PeerID != "guest-1" {
		t.Fatalf("unexpected connect from %s", ev.PeerID)
	}
	if !host.IsConnected() {
		t.Fatal("host must be connected once its connect event arrived")
	}
	if ev := waitEvent(t, guest, EventConnect); ev.PeerID != "host" {
		t.Fatalf("guest connected to %s", ev.PeerID)
	}

	if err := guest.Send("host", []byte(`hello`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	ev := waitEvent(t, host, EventData)
	if ev.PeerID != "guest-1" || string(ev.Data) != "hello" {
		t.Fatalf("unexpected data event %+v", ev)
	}
	if err := host.Send("guest-1", []byte(`welcome`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if ev := waitEvent(t, guest, EventData); string(ev.Data) != "welcome" {
		t.Fatalf("unexpected data %q", ev.Data)
	}
}

func TestJoinRejectsVersionMismatch(t *testing.T) {
	_, id := newHost(t)
	guest := NewWSTransport(Options{PeerID: "old", ProtocolVersion: "0", SetupTimeout: time.Second})
	defer guest.Close()
	err := guest.JoinAsGuest(context.Background(), id)
	if !errors.Is(err, ErrConnectionSetup) {
		t.Fatalf("expected ErrConnectionSetup, got %v", err)
	}
	if guest.IsConnected() {
		t.Fatal("failed join must leave the guest disconnected")
	}
}

func TestJoinRejectsWrongHostIdentity(t *testing.T) {
	_, id := newHost(t)
	_, addr, err := ParseHostID(id)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	guest := newGuest(t, "guest-1")
	if err := guest.JoinAsGuest(context.Background(), FormatHostID("impostor", addr)); !errors.Is(err, ErrConnectionSetup) {
		t.Fatalf("expected ErrConnectionSetup, got %v", err)
	}
	// A failed attempt can be retried.
	if err := guest.JoinAsGuest(context.Background(), id); err != nil {
		t.Fatalf("retry join: %v", err)
	}
}

func TestJoinTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
		}
	}()

	guest := NewWSTransport(Options{PeerID: "g", ProtocolVersion: "1", SetupTimeout: 200 * time.Millisecond})
	defer guest.Close()
	started := time.Now()
	err = guest.JoinAsGuest(context.Background(), FormatHostID("host", ln.Addr().String()))
	if !errors.Is(err, ErrConnectionSetup) {
		t.Fatalf("expected ErrConnectionSetup, got %v", err)
	}
	if time.Since(started) > 3*time.Second {
		t.Fatalf("setup was not bounded: %s", time.Since(started))
	}
}

func TestBroadcastSkipsClosedPeers(t *testing.T) {
	host, id := newHost(t)
	g1 := newGuest(t, "g1")
	g2 := newGuest(t, "g2")
	for _, g := range []*WSTransport{g1, g2} {
		if err := g.JoinAsGuest(context.Background(), id); err != nil {
			t.Fatalf("join: %v", err)
		}
		waitEvent(t, host, EventConnect)
	}
	if err := g2.Close(); err != nil {
		t.Fatalf("close guest: %v", err)
	}
	if ev := waitEvent(t, host, EventClose); ev.PeerID != "g2" {
		t.Fatalf("unexpected close for %s", ev.PeerID)
	}
	if peers := host.Peers(); len(peers) != 1 || peers[0] != "g1" {
		t.Fatalf("unexpected peers %v", peers)
	}
	if n := host.Broadcast([]byte("rack")); n != 1 {
		t.Fatalf("expected broadcast to reach 1 peer, got %d", n)
	}
	if ev := waitEvent(t, g1, EventData); string(ev.Data) != "rack" {
		t.Fatalf("unexpected data %q", ev.Data)
	}
	if err := host.Send("g2", []byte("x")); !errors.Is(err, ErrPeerNotFound) {
		t.Fatalf("expected ErrPeerNotFound, got %v", err)
	}
}

func TestCloseClearsPeersAndEvents(t *testing.T) {
	host, id := newHost(t)
	guest := newGuest(t, "g1")
	if err := guest.JoinAsGuest(context.Background(), id); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitEvent(t, host, EventConnect)

	if err := host.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if host.IsConnected() || len(host.Peers()) != 0 || host.State() != StateClosed {
		t.Fatal("closed host still reports peers")
	}
	timeout := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, open = <-host.Events():
		case <-timeout:
			t.Fatal("events channel not closed")
		}
	}
	if err := host.Send("g1", []byte("x")); !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("expected ErrTransportClosed, got %v", err)
	}
	if host.Broadcast([]byte("x")) != 0 {
		t.Fatal("broadcast after close must reach nobody")
	}
	if ev := waitEvent(t, guest, EventClose); ev.PeerID != "host" {
		t.Fatalf("unexpected close for %s", ev.PeerID)
	}
	if _, err := host.CreateHost(context.Background()); !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("expected ErrTransportClosed, got %v", err)
	}
}

func TestParseHostID(t *testing.T) {
	peer, addr, err := ParseHostID("abc@10.0.0.2:7000")
	if err != nil || peer != "abc" || addr != "10.0.0.2:7000" {
		t.Fatalf("unexpected parse %q %q %v", peer, addr, err)
	}
	for _, bad := range []string{"", "abc", "@addr", "abc@"} {
		if _, _, err := ParseHostID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCloseFlushesQueuedFrames(t *testing.T) {
	host, id := newHost(t)
	guest := newGuest(t, "guest-1")
	if err := guest.JoinAsGuest(context.Background(), id); err != nil {
		t.Fatalf("join: %v", err)
	}
	waitEvent(t, host, EventConnect)
	waitEvent(t, guest, EventConnect)

	const frames = 10
	for i := 0; i < frames; i++ {
		if err := host.Send("guest-1", []byte{byte('a' + i)}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := host.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	for i := 0; i < frames; i++ {
		ev := waitEvent(t, guest, EventData)
		if string(ev.Data) != string([]byte{byte('a' + i)}) {
			t.Fatalf("frame %d = %q", i, ev.Data)
		}
	}
	if ev := waitEvent(t, guest, EventClose); ev.PeerID != "host" {
		t.Fatalf("unexpected close from %s", ev.PeerID)
	}
}
