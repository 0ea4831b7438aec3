package api

import (
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/gamestore"
	"github.com/park285/cheese-chess/internal/match"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// errBadRequest marks malformed bodies and parameters.
var errBadRequest = errors.New("bad request")

type errorMapping struct {
	target    error
	status    int
	code      string
	retryable bool
}

// Order matters: match errors that wrap engine rejections (ErrBadMove) come before the engine
// kinds, and the first hit wins.
var errorTable = []errorMapping{
	{errBadRequest, fasthttp.StatusBadRequest, "bad_request", false},
	{match.ErrInvalidArgs, fasthttp.StatusBadRequest, "bad_request", false},
	{match.ErrBadMove, fasthttp.StatusBadRequest, "bad_request", false},
	{chess.ErrIllegalMove, fasthttp.StatusBadRequest, "illegal_move", false},
	{chess.ErrNoPieceAtOrigin, fasthttp.StatusBadRequest, "no_piece", false},
	{chess.ErrPromotionPending, fasthttp.StatusBadRequest, "promotion_pending", false},
	{chess.ErrInvalidPromotion, fasthttp.StatusBadRequest, "invalid_promotion", false},
	{chess.ErrInvalidResult, fasthttp.StatusBadRequest, "invalid_result", false},
	{chess.ErrGameNotStarted, fasthttp.StatusConflict, "game_not_started", false},
	{chess.ErrGameCompleted, fasthttp.StatusConflict, "game_completed", false},
	{match.ErrNotParticipant, fasthttp.StatusForbidden, "not_participant", false},
	{match.ErrNotYourTurn, fasthttp.StatusForbidden, "not_your_turn", false},
	{match.ErrSeatTaken, fasthttp.StatusConflict, "seat_taken", false},
	{match.ErrAlreadySeated, fasthttp.StatusConflict, "already_seated", false},
	{match.ErrCannotCancel, fasthttp.StatusConflict, "cannot_cancel", false},
	{gamestore.ErrNotFound, fasthttp.StatusNotFound, "game_not_found", false},
	{gamestore.ErrConflict, fasthttp.StatusConflict, "conflict", true},
}

// toDomainError maps err onto an HTTP status and a catalog-rendered DomainError.
func (s *Server) toDomainError(err error, gameID string) (int, chessdto.DomainError) {
	status, code, retryable := fasthttp.StatusInternalServerError, "internal", false
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			status, code, retryable = m.status, m.code, m.retryable
			break
		}
	}

	data := map[string]any{"Detail": err.Error(), "GameID": gameID, "Move": "", "Square": ""}
	var me *chess.MoveError
	if errors.As(err, &me) {
		if me.Move != (chess.Move{}) {
			data["Move"] = me.Move.String()
			data["Square"] = me.Move.From.String()
		}
		if me.Reason != "" {
			data["Detail"] = me.Reason
		}
	}
	fallback := err.Error()
	if status == fasthttp.StatusInternalServerError {
		fallback = "internal error"
	}
	return status, chessdto.DomainError{
		Code:      code,
		Message:   s.catalog.Text("error."+code, data, fallback),
		Retryable: retryable,
	}
}
