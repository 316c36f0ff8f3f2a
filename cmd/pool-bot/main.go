package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poker-pool/internal/config"
	"poker-pool/internal/game"
	"poker-pool/internal/logging"
	"poker-pool/internal/p2p"
	"poker-pool/internal/protocol"
	"poker-pool/internal/session"

	"github.com/rs/zerolog/log"
)

type moveKind int

const (
	moveWait moveKind = iota
	movePocket
	moveClaim
	moveEndTurn
)

type move struct {
	kind moveKind
	ball int
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	player := game.NewPlayer(cfg.Name, "🤖", false)
	tr := p2p.NewWSTransport(p2p.Options{
		PeerID:          player.ID,
		ProtocolVersion: protocol.Version,
		SetupTimeout:    cfg.SetupTimeout,
	})
	sess := session.New(tr, session.Config{Player: player, Rand: rnd})
	if err := sess.Join(ctx, cfg.HostID); err != nil {
		log.Fatal().Err(err).Str("host_id", cfg.HostID).Msg("join failed")
	}
	log.Info().Str("player_id", player.ID).Msg("bot joined")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			leaveCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = sess.Leave(leaveCtx)
			cancel()
			return
		case <-ticker.C:
			if err := step(ctx, sess, rnd); errors.Is(err, session.ErrClosed) {
				log.Info().Msg("session closed")
				return
			}
		}
	}
}

func step(ctx context.Context, sess *session.Session, rnd *rand.Rand) error {
	room, err := sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	m := decide(rnd, room, sess.PlayerID())
	switch m.kind {
	case movePocket:
		_, err = sess.Pocket(ctx, m.ball)
		if err == nil {
			_, err = sess.EndTurn(ctx)
		}
	case moveClaim:
		var hand *game.HandResult
		hand, _, err = sess.ClaimHand(ctx)
		if err == nil {
			log.Info().Str("hand", hand.Name).Msg("hand claimed")
		}
	case moveEndTurn:
		_, err = sess.EndTurn(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Int("move", int(m.kind)).Msg("move failed")
	}
	return err
}

// decide picks the bot's move: claim once five cards are held, otherwise pocket a random
// ball still on the table. Nothing happens outside the bot's turn.
func decide(rnd *rand.Rand, room *game.Room, selfID string) move {
	s := room.GameState
	if s.Phase != game.PhasePlaying || s.CurrentPlayerID == nil || *s.CurrentPlayerID != selfID {
		return move{kind: moveWait}
	}
	if p, ok := room.Player(selfID); ok && len(p.Hand) >= 5 {
		return move{kind: moveClaim}
	}
	open := make([]int, 0, len(s.Balls))
	for _, b := range s.Balls {
		if !b.IsPocketed {
			open = append(open, b.Number)
		}
	}
	if len(open) == 0 {
		return move{kind: moveEndTurn}
	}
	return move{kind: movePocket, ball: open[rnd.Intn(len(open))]}
}
