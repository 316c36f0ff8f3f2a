package session

import (
	"github.com/rs/zerolog/log"

	"poker-pool/internal/game"
	"poker-pool/internal/protocol"
)

// dispatch applies one inbound message. The host validates guest intents against its own
// room and answers with the canonical state; guests mirror what the host sends.
func (s *Session) dispatch(peerID string, msg protocol.Message) {
	if s.isHost && msg.SenderID != peerID {
		log.Warn().Str("peer_id", peerID).Str("sender_id", msg.SenderID).Msg("message_sender_mismatch")
		return
	}
	if s.isHost {
		s.dispatchHost(peerID, msg)
		return
	}
	s.dispatchGuest(msg)
}

func (s *Session) dispatchHost(peerID string, msg protocol.Message) {
	switch p := msg.Payload.(type) {
	case protocol.PlayerJoined:
		if p.Player.ID != peerID {
			log.Warn().Str("peer_id", peerID).Msg("player_joined_foreign_id")
			return
		}
		p.Player.Hand = []game.Card{}
		p.Player.ClaimedHand = nil
		if s.room.AddPlayer(p.Player) {
			log.Info().Str("room_id", s.room.ID).Str("player_id", peerID).Str("name", p.Player.Name).Msg("player_joined")
			s.persist(s.room.Clone(), nil)
		}
		s.broadcastState()
	case protocol.PlayerLeft:
		if p.PlayerID != peerID || !s.room.RemovePlayer(peerID) {
			return
		}
		s.broadcast(p)
		s.broadcastState()
		s.persist(s.room.Clone(), nil)
	case protocol.BallPocketed:
		if p.PlayerID != peerID {
			return
		}
		changed, res := s.room.Pocket(p.BallNumber, peerID)
		if !changed {
			// the guest may be behind; resync it
			s.send(peerID, protocol.GameStateUpdate{GameState: s.room.GameState, Players: s.room.Players})
			return
		}
		log.Info().Str("player_id", peerID).Int("ball", p.BallNumber).Msg("ball_pocketed")
		s.afterMove(res)
	case protocol.HandClaimed:
		if p.PlayerID != peerID {
			return
		}
		hand, res, err := s.room.ClaimHand(peerID)
		if err != nil {
			log.Info().Err(err).Str("player_id", peerID).Msg("hand_claim_rejected")
			s.send(peerID, protocol.GameStateUpdate{GameState: s.room.GameState, Players: s.room.Players})
			return
		}
		s.broadcast(protocol.HandClaimed{PlayerID: peerID, Hand: *hand})
		s.afterMove(res)
	case protocol.TurnEnded:
		if p.PlayerID != peerID {
			return
		}
		next, err := s.room.EndTurn(peerID)
		if err != nil {
			log.Info().Err(err).Str("player_id", peerID).Msg("turn_end_rejected")
			s.send(peerID, protocol.GameStateUpdate{GameState: s.room.GameState, Players: s.room.Players})
			return
		}
		s.broadcast(protocol.TurnEnded{PlayerID: peerID, NextPlayerID: next})
		s.broadcastState()
	case protocol.GameStateUpdate, protocol.GameStarted, protocol.NewRack, protocol.RoundEnded:
		log.Debug().Str("peer_id", peerID).Str("type", string(msg.Type)).Msg("host_ignores_state")
	default:
		log.Debug().Str("peer_id", peerID).Str("type", string(msg.Type)).Msg("message_ignored")
	}
}

func (s *Session) dispatchGuest(msg protocol.Message) {
	switch p := msg.Payload.(type) {
	case protocol.PlayerJoined:
		s.room.AddPlayer(p.Player)
	case protocol.PlayerLeft:
		s.room.RemovePlayer(p.PlayerID)
	case protocol.GameStarted:
		s.room.ApplyState(p.GameState, p.Players)
	case protocol.GameStateUpdate:
		s.room.ApplyState(p.GameState, p.Players)
	case protocol.NewRack:
		s.room.ApplyRack(p.RackNumber, p.DeckPosition, p.Balls)
	case protocol.BallPocketed:
		s.room.Pocket(p.BallNumber, p.PlayerID)
	case protocol.HandClaimed:
		s.room.ApplyClaim(p.PlayerID, p.Hand)
	case protocol.RoundEnded:
		s.room.ApplyRoundResult(game.RoundResult{WinnerID: p.WinnerID, Hand: p.Hand})
		log.Info().Str("winner_id", p.WinnerID).Msg("round_ended")
	case protocol.TurnEnded:
		s.room.ApplyTurn(p.NextPlayerID)
	default:
		log.Debug().Str("type", string(msg.Type)).Msg("message_ignored")
		return
	}
	if msg.Type == protocol.TypeGameStateUpdate || msg.Type == protocol.TypeRoundEnded {
		s.persist(s.room.Clone(), nil)
	}
}

// afterMove publishes the host's state after an accepted move, ending the round when res
// is set.
func (s *Session) afterMove(res *game.RoundResult) {
	if res != nil {
		s.broadcast(protocol.RoundEnded{WinnerID: res.WinnerID, Hand: res.Hand})
		log.Info().Str("room_id", s.room.ID).Str("winner_id", res.WinnerID).Msg("round_ended")
	}
	s.broadcastState()
	s.persist(s.room.Clone(), res)
}
