package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poker-pool/internal/config"
	"poker-pool/internal/devicestate"
	"poker-pool/internal/game"
	"poker-pool/internal/logging"
	"poker-pool/internal/p2p"
	"poker-pool/internal/protocol"
	"poker-pool/internal/session"
	"poker-pool/internal/store"
	httptransport "poker-pool/internal/transport/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg.Node)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("node stopped")
	}
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.NodeConfig) error {
	st := store.Open(ctx, cfg.PostgresDSN)
	defer st.Close()

	device := devicestate.New(cfg.DeviceStatePath)
	player := localPlayer(device, cfg)

	tr := p2p.NewWSTransport(p2p.Options{
		PeerID:          player.ID,
		ProtocolVersion: protocol.Version,
		ListenAddr:      cfg.P2PAddr,
		AdvertiseAddr:   cfg.P2PAdvertiseAddr,
		SetupTimeout:    cfg.SetupTimeout,
	})
	sess := session.New(tr, session.Config{
		Player:         player,
		RoomName:       cfg.RoomName,
		RoomAvatar:     cfg.PlayerAvatar,
		Rand:           newRand(cfg.RNGSeed),
		Store:          st,
		Device:         device,
		PersistTimeout: cfg.PersistTimeout,
	})
	defer sess.Close()

	if cfg.IsGuest() {
		if err := sess.Join(ctx, cfg.JoinHost); err != nil {
			return err
		}
	} else {
		hostID, err := sess.Host(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("host_id", hostID).Msg("share this id with guests")
	}

	r := httptransport.NewRouter(sess, st)
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sess.Leave(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("leave failed")
		}
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// localPlayer reuses the identity remembered on this device so a restarted node rejoins as
// the same player.
func localPlayer(device *devicestate.File, cfg config.NodeConfig) game.Player {
	player := game.NewPlayer(cfg.PlayerName, cfg.PlayerAvatar, !cfg.IsGuest())
	snap, err := device.Load()
	if err != nil {
		log.Warn().Err(err).Str("path", device.Path).Msg("device_state_load_failed")
	} else if snap.Player != nil && snap.Player.ID != "" {
		player.ID = snap.Player.ID
	}
	if err := device.SavePlayer(player); err != nil {
		log.Warn().Err(err).Str("path", device.Path).Msg("device_state_save_failed")
	}
	return player
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
