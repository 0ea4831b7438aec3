package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/gamestore"
	"github.com/park285/cheese-chess/internal/match"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	var req chessdto.CreateGameRequest
	if !s.decode(ctx, &req) {
		return
	}
	choice, err := match.ParseColorChoice(req.Color)
	if err != nil {
		s.writeError(ctx, fmt.Errorf("%w: color %q", errBadRequest, req.Color), "")
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.CreateGame(rctx, req.UserID, req.Name, choice)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	writeJSON(ctx, fasthttp.StatusCreated, chessdto.GameResponse{Game: ToGameView(g)})
}

func (s *Server) handleListGames(ctx *fasthttp.RequestCtx) {
	status := strings.ToLower(strings.TrimSpace(string(ctx.QueryArgs().Peek("status"))))
	if status != "" && status != string(chess.StatusWaiting) {
		s.writeError(ctx, fmt.Errorf("%w: only status=waiting is listable", errBadRequest), "")
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	list, err := s.mgr.ListWaiting(rctx)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GamesResponse{Games: ToGameViews(list)})
}

func (s *Server) handleGetGame(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.Get(rctx, id)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{Game: ToGameView(g)})
}

func (s *Server) handleRecord(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	rec, err := s.mgr.Record(rctx, id)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.RecordResponse{Game: ToDTOGame(rec)})
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.JoinRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.Join(rctx, id, req.UserID, req.Name)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{Game: ToGameView(g)})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.PlayMove(rctx, id, req.UserID, req.Move)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MoveResponse{Summary: summarize(g)})
}

func (s *Server) handlePromotion(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.PromotionRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.Promote(rctx, id, req.UserID, req.Piece)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MoveResponse{Summary: summarize(g)})
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.ResignRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.Resign(rctx, id, req.UserID)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{Game: ToGameView(g)})
}

func (s *Server) handleTimeout(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.TimeoutRequest
	if !s.decode(ctx, &req) {
		return
	}
	loser, err := chess.ParseColor(req.Loser)
	if err != nil {
		s.writeError(ctx, fmt.Errorf("%w: loser %q", errBadRequest, req.Loser), id)
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.Timeout(rctx, id, loser)
	if err != nil {
		s.writeError(ctx, err, id)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{Game: ToGameView(g)})
}

func (s *Server) handleCancel(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.CancelRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	if err := s.mgr.Cancel(rctx, id, req.UserID); err != nil {
		s.writeError(ctx, err, id)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) handleHistory(ctx *fasthttp.RequestCtx, userID string) {
	limit := s.historyLimit
	if raw := strings.TrimSpace(string(ctx.QueryArgs().Peek("limit"))); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(ctx, fmt.Errorf("%w: limit %q", errBadRequest, raw), "")
			return
		}
		limit = n
	}
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	list, err := s.mgr.History(rctx, userID, limit)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.HistoryResponse{Games: ToDTOGames(list)})
}

func (s *Server) handleActive(ctx *fasthttp.RequestCtx, userID string) {
	rctx, cancel := s.reqContext(ctx)
	defer cancel()
	g, err := s.mgr.ActiveGameByUser(rctx, userID)
	if err != nil {
		s.writeError(ctx, err, "")
		return
	}
	if g == nil {
		s.writeError(ctx, gamestore.ErrNotFound, "")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.GameResponse{Game: ToGameView(g)})
}

// summarize describes the last accepted step of g.
func summarize(g *gamestore.Game) *chessdto.MoveSummary {
	sum := &chessdto.MoveSummary{
		Game:             ToGameView(g),
		PromotionPending: g.State.IsPromotionPending(),
		Finished:         g.State.IsOver(),
	}
	switch {
	case sum.PromotionPending:
		sum.Move = g.PendingUCI
	case len(g.MovesUCI) > 0:
		sum.Move = g.MovesUCI[len(g.MovesUCI)-1]
	}
	if sum.Finished {
		sum.Text = match.Outcome(g)
	}
	return sum
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		s.writeError(ctx, fmt.Errorf("%w: empty body", errBadRequest), "")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.writeError(ctx, fmt.Errorf("%w: %v", errBadRequest, err), "")
		return false
	}
	return true
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error, gameID string) {
	status, de := s.toDomainError(err, gameID)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("http_error", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func (s *Server) writeStatusError(ctx *fasthttp.RequestCtx, status int, code, fallback string) {
	de := chessdto.DomainError{Code: code, Message: s.catalog.Text("error."+code, nil, fallback)}
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":{"code":"internal","message":"encode response"}}`)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBody(payload)
}
