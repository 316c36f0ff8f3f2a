package main

import (
	"path/filepath"
	"testing"

	"poker-pool/internal/config"
	"poker-pool/internal/devicestate"
)

func TestLocalPlayerKeepsDeviceIdentity(t *testing.T) {
	device := devicestate.New(filepath.Join(t.TempDir(), "device.json"))
	cfg := config.NodeConfig{PlayerName: "ann", PlayerAvatar: "A"}

	first := localPlayer(device, cfg)
	if first.ID == "" || !first.IsHost {
		t.Fatalf("unexpected first player %+v", first)
	}

	cfg.PlayerName = "annie"
	cfg.JoinHost = "peer@127.0.0.1:7420"
	second := localPlayer(device, cfg)
	if second.ID != first.ID {
		t.Fatalf("expected id %q to survive restart, got %q", first.ID, second.ID)
	}
	if second.Name != "annie" || second.IsHost {
		t.Fatalf("expected refreshed guest profile, got %+v", second)
	}
}

func TestNewRandSeeded(t *testing.T) {
	a, b := newRand(42), newRand(42)
	for i := 0; i < 10; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("same seed must give the same sequence")
		}
	}
}
