package session

import (
	"context"
	"errors"

	"poker-pool/internal/game"
	"poker-pool/internal/protocol"
)

// Snapshot returns a deep copy of the local room.
func (s *Session) Snapshot(ctx context.Context) (*game.Room, error) {
	var out *game.Room
	err := s.do(ctx, func() error {
		out = s.room.Clone()
		return nil
	})
	return out, err
}

// Status reports whether the node hosts and whether it currently has a live link.
func (s *Session) Status(ctx context.Context) (isHost, connected bool, err error) {
	err = s.do(ctx, func() error {
		isHost = s.isHost
		connected = s.connected
		if s.isHost {
			connected = s.transport.IsConnected()
		}
		return nil
	})
	return isHost, connected, err
}

func (s *Session) Peers() []string {
	return s.transport.Peers()
}

// StartGame deals a fresh deck. Only the host deals.
func (s *Session) StartGame(ctx context.Context) error {
	return s.do(ctx, func() error {
		if !s.isHost {
			return ErrNotHost
		}
		if err := s.room.StartGame(s.cfg.Rand); err != nil {
			return err
		}
		s.broadcast(protocol.GameStarted{GameState: s.room.GameState, Players: s.room.Players})
		s.persist(s.room.Clone(), nil)
		return nil
	})
}

// NextRack deals the following rack. When the deck runs out the game is finished and
// game.ErrDeckExhausted is returned.
func (s *Session) NextRack(ctx context.Context) error {
	return s.do(ctx, func() error {
		if !s.isHost {
			return ErrNotHost
		}
		err := s.room.NextRack(s.cfg.Rand)
		if err == nil {
			st := s.room.GameState
			s.broadcast(protocol.NewRack{RackNumber: st.RackNumber, DeckPosition: st.DeckPosition, Balls: st.Balls})
		}
		if err == nil || errors.Is(err, game.ErrDeckExhausted) {
			s.broadcastState()
			s.persist(s.room.Clone(), nil)
		}
		return err
	})
}

// Pocket claims a ball for the local player.
func (s *Session) Pocket(ctx context.Context, ballNumber int) (*game.RoundResult, error) {
	var out *game.RoundResult
	err := s.do(ctx, func() error {
		if err := game.ValidatePhase(s.room.GameState, game.PhasePlaying); err != nil {
			return err
		}
		changed, res := s.room.Pocket(ballNumber, s.self.ID)
		if !changed {
			return ErrBallUnavailable
		}
		if !s.isHost {
			s.send(s.hostPeer, protocol.BallPocketed{BallNumber: ballNumber, PlayerID: s.self.ID})
			return nil
		}
		out = res
		s.afterMove(res)
		return nil
	})
	return out, err
}

// ClaimHand declares the local player's best hand. On a guest the host decides the round;
// only the evaluated hand is returned.
func (s *Session) ClaimHand(ctx context.Context) (*game.HandResult, *game.RoundResult, error) {
	var (
		hand *game.HandResult
		res  *game.RoundResult
	)
	err := s.do(ctx, func() error {
		if !s.isHost {
			if err := game.ValidatePhase(s.room.GameState, game.PhasePlaying); err != nil {
				return err
			}
			p, ok := s.room.Player(s.self.ID)
			if !ok {
				return game.ErrPlayerNotFound
			}
			hand = game.EvaluateBestHand(p.Hand)
			if hand == nil {
				return game.ErrHandTooSmall
			}
			s.room.ApplyClaim(s.self.ID, *hand)
			s.send(s.hostPeer, protocol.HandClaimed{PlayerID: s.self.ID, Hand: *hand})
			return nil
		}
		var err error
		hand, res, err = s.room.ClaimHand(s.self.ID)
		if err != nil {
			return err
		}
		s.broadcast(protocol.HandClaimed{PlayerID: s.self.ID, Hand: *hand})
		s.afterMove(res)
		return nil
	})
	return hand, res, err
}

// EndTurn passes the turn on and returns who plays next.
func (s *Session) EndTurn(ctx context.Context) (string, error) {
	var next string
	err := s.do(ctx, func() error {
		var err error
		next, err = s.room.EndTurn(s.self.ID)
		if err != nil {
			return err
		}
		if !s.isHost {
			s.send(s.hostPeer, protocol.TurnEnded{PlayerID: s.self.ID, NextPlayerID: next})
			return nil
		}
		s.broadcast(protocol.TurnEnded{PlayerID: s.self.ID, NextPlayerID: next})
		s.broadcastState()
		return nil
	})
	return next, err
}

// Leave announces the departure and closes the session.
func (s *Session) Leave(ctx context.Context) error {
	err := s.do(ctx, func() error {
		if s.isHost {
			s.broadcast(protocol.PlayerLeft{PlayerID: s.self.ID})
			return nil
		}
		s.send(s.hostPeer, protocol.PlayerLeft{PlayerID: s.self.ID})
		return nil
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		return err
	}
	return s.Close()
}
