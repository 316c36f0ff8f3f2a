package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"poker-pool/internal/game"
	"poker-pool/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Game is the local node's view of the table.
type Game interface {
	PlayerID() string
	Snapshot(ctx context.Context) (*game.Room, error)
	Status(ctx context.Context) (isHost, connected bool, err error)
	Peers() []string
	StartGame(ctx context.Context) error
	NextRack(ctx context.Context) error
	Pocket(ctx context.Context, ballNumber int) (*game.RoundResult, error)
	ClaimHand(ctx context.Context) (*game.HandResult, *game.RoundResult, error)
	EndTurn(ctx context.Context) (string, error)
}

type GameHandlers struct {
	game Game
}

func NewGameHandlers(g Game) *GameHandlers {
	return &GameHandlers{game: g}
}

type roomResponse struct {
	PlayerID  string     `json:"playerId"`
	IsHost    bool       `json:"isHost"`
	Connected bool       `json:"connected"`
	Room      *game.Room `json:"room"`
}

type actionResponse struct {
	OK           bool              `json:"ok"`
	Round        *game.RoundResult `json:"round,omitempty"`
	Hand         *game.HandResult  `json:"hand,omitempty"`
	NextPlayerID string            `json:"nextPlayerId,omitempty"`
}

func (h *GameHandlers) Room() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := h.game.Snapshot(r.Context())
		if err != nil {
			writeActionError(w, err)
			return
		}
		isHost, connected, err := h.game.Status(r.Context())
		if err != nil {
			writeActionError(w, err)
			return
		}
		writeJSON(w, roomResponse{PlayerID: h.game.PlayerID(), IsHost: isHost, Connected: connected, Room: room})
	}
}

func (h *GameHandlers) Peers() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"items": h.game.Peers()})
	}
}

func (h *GameHandlers) Start() http.HandlerFunc {
	return h.action(func(ctx context.Context, _ *http.Request) (actionResponse, error) {
		return actionResponse{OK: true}, h.game.StartGame(ctx)
	})
}

func (h *GameHandlers) NextRack() http.HandlerFunc {
	return h.action(func(ctx context.Context, _ *http.Request) (actionResponse, error) {
		return actionResponse{OK: true}, h.game.NextRack(ctx)
	})
}

func (h *GameHandlers) Pocket() http.HandlerFunc {
	return h.action(func(ctx context.Context, r *http.Request) (actionResponse, error) {
		n, err := strconv.Atoi(chi.URLParam(r, "number"))
		if err != nil || n < 1 || n > game.RackSize {
			return actionResponse{}, errInvalidBall
		}
		res, err := h.game.Pocket(ctx, n)
		return actionResponse{OK: true, Round: res}, err
	})
}

func (h *GameHandlers) Claim() http.HandlerFunc {
	return h.action(func(ctx context.Context, _ *http.Request) (actionResponse, error) {
		hand, res, err := h.game.ClaimHand(ctx)
		return actionResponse{OK: true, Hand: hand, Round: res}, err
	})
}

func (h *GameHandlers) EndTurn() http.HandlerFunc {
	return h.action(func(ctx context.Context, _ *http.Request) (actionResponse, error) {
		next, err := h.game.EndTurn(ctx)
		return actionResponse{OK: true, NextPlayerID: next}, err
	})
}

func (h *GameHandlers) action(fn func(context.Context, *http.Request) (actionResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricActionTotal.Add(1)
		resp, err := fn(r.Context(), r)
		if err != nil {
			metricActionErrors.Add(1)
			writeActionError(w, err)
			return
		}
		writeJSON(w, resp)
	}
}

var errInvalidBall = errors.New("invalid_ball")

// MapActionError turns a session or rules error into an HTTP status and error code.
func MapActionError(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBall):
		return http.StatusBadRequest, "invalid_ball"
	case errors.Is(err, session.ErrNotHost):
		return http.StatusForbidden, "not_host"
	case errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, game.ErrInvalidPhase):
		return http.StatusConflict, "invalid_phase"
	case errors.Is(err, game.ErrNotYourTurn):
		return http.StatusConflict, "not_your_turn"
	case errors.Is(err, session.ErrBallUnavailable):
		return http.StatusConflict, "ball_unavailable"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusConflict, "not_enough_players"
	case errors.Is(err, game.ErrDeckExhausted):
		return http.StatusConflict, "deck_exhausted"
	case errors.Is(err, game.ErrHandTooSmall):
		return http.StatusUnprocessableEntity, "hand_too_small"
	case errors.Is(err, session.ErrNotStarted), errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "session_unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeActionError(w http.ResponseWriter, err error) {
	status, code := MapActionError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("action_failed")
	}
	WriteHTTPError(w, status, code)
}
