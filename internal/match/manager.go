package match

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/domain"
	"github.com/park285/cheese-chess/internal/gamestore"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/notify"
	"github.com/park285/cheese-chess/internal/obslog"
)

// Manager runs two-player games on top of the rules engine. Every change goes through
// Store.Update, so the seat and turn checks, the engine call and the write happen against
// the same stored version.
type Manager struct {
	store   gamestore.Store
	archive gamestore.Archive
	rules   *chess.Rules
	pub     notify.Publisher
	catalog *msgcat.Catalog
	logger  *zap.Logger

	now    func() time.Time
	newID  func() string
	random io.Reader
}

type Option func(*Manager)

// WithRandom replaces crypto/rand as the source for random seat assignment.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) {
		if r != nil {
			m.random = r
		}
	}
}

func WithPublisher(p notify.Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.pub = p
		}
	}
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(m *Manager) { m.catalog = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

func NewManager(store gamestore.Store, archive gamestore.Archive, rules *chess.Rules, opts ...Option) *Manager {
	if rules == nil {
		rules = chess.NewRules()
	}
	if archive == nil {
		archive = gamestore.NewMemoryArchive()
	}
	m := &Manager{
		store:   store,
		archive: archive,
		rules:   rules,
		pub:     notify.Nop{},
		logger:  obslog.L(),
		now:     time.Now,
		newID:   uuid.NewString,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateGame opens a waiting game with the creator seated on the requested color.
func (m *Manager) CreateGame(ctx context.Context, userID, name string, choice ColorChoice) (*gamestore.Game, error) {
	userID, name = strings.TrimSpace(userID), strings.TrimSpace(name)
	if userID == "" {
		return nil, ErrInvalidArgs
	}
	if name == "" {
		name = userID
	}
	color := chess.White
	switch choice {
	case ColorWhite:
	case ColorBlack:
		color = chess.Black
	default:
		n, err := rand.Int(m.random, big.NewInt(2))
		if err != nil {
			m.logger.Error("game_color_pick_error", zap.String("creator_id", userID), zap.Error(err))
			return nil, fmt.Errorf("pick color: %w", err)
		}
		if n.Int64() == 1 {
			color = chess.Black
		}
	}

	now := m.now()
	g := &gamestore.Game{
		ID:        m.newID(),
		State:     chess.NewGame(),
		MovesUCI:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if color == chess.White {
		g.WhiteID, g.WhiteName = userID, name
	} else {
		g.BlackID, g.BlackName = userID, name
	}
	if err := m.store.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	m.logger.Info("game_create",
		zap.String("game_id", g.ID),
		zap.String("creator_id", userID),
		zap.String("color", color.String()),
	)
	ev := notify.FromState(notify.KindCreated, g.ID, g.State)
	ev.Actor = userID
	ev.Text = m.text("event.created", map[string]any{"Player": name, "GameID": g.ID}, "")
	m.publish(ctx, g, ev)
	return g, nil
}

// Join seats userID on the free color and starts the game.
func (m *Manager) Join(ctx context.Context, gameID, userID, name string) (*gamestore.Game, error) {
	userID, name = strings.TrimSpace(userID), strings.TrimSpace(name)
	if userID == "" {
		return nil, ErrInvalidArgs
	}
	if name == "" {
		name = userID
	}
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		if _, seated := g.ColorOf(userID); seated {
			return ErrAlreadySeated
		}
		switch g.State.Status {
		case chess.StatusCompleted:
			return chess.ErrGameCompleted
		case chess.StatusActive:
			return ErrSeatTaken
		}
		switch {
		case g.WhiteID == "":
			g.WhiteID, g.WhiteName = userID, name
		case g.BlackID == "":
			g.BlackID, g.BlackName = userID, name
		default:
			return ErrSeatTaken
		}
		next, err := m.rules.Start(g.State)
		if err != nil {
			return err
		}
		g.State = next
		g.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		m.logger.Warn("game_join_error", zap.String("game_id", gameID), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	m.logger.Info("game_join",
		zap.String("game_id", g.ID),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	ev := notify.FromState(notify.KindJoined, g.ID, g.State)
	ev.Actor = userID
	ev.Text = m.text("event.joined", map[string]any{"Player": name, "White": g.WhiteName, "Black": g.BlackName}, "")
	m.publish(ctx, g, ev)
	return g, nil
}

// PlayMove applies text for userID. A pawn reaching the last rank without a piece letter
// leaves the game waiting for Promote.
func (m *Manager) PlayMove(ctx context.Context, gameID, userID, text string) (*gamestore.Game, error) {
	userID = strings.TrimSpace(userID)
	var played chess.Move
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		color, ok := g.ColorOf(userID)
		if !ok {
			return ErrNotParticipant
		}
		if g.State.Status == chess.StatusActive && g.State.Turn != color {
			return ErrNotYourTurn
		}
		mv, err := chess.ParseMove(text)
		if err != nil {
			if g.State.Status != chess.StatusActive || g.State.IsPromotionPending() {
				return fmt.Errorf("%w: %q", ErrBadMove, strings.TrimSpace(text))
			}
			if mv, err = resolveMove(g.MovesUCI, text); err != nil {
				return err
			}
		}
		next, err := m.rules.ApplyMove(g.State, mv)
		if err != nil {
			return err
		}
		if next.IsPromotionPending() {
			g.PendingUCI = mv.String()
		} else {
			g.MovesUCI = append(g.MovesUCI, mv.String())
		}
		g.State = next
		g.UpdatedAt = m.now()
		played = mv
		return nil
	})
	if err != nil {
		m.logger.Info("game_move_rejected",
			zap.String("game_id", gameID),
			zap.String("user_id", userID),
			zap.String("move", strings.TrimSpace(text)),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Info("game_move",
		zap.String("game_id", g.ID),
		zap.String("user_id", userID),
		zap.String("move", played.String()),
		zap.String("turn", g.State.Turn.String()),
		zap.String("status", string(g.State.Status)),
		zap.Bool("check", g.State.Check),
	)
	_, name := g.PlayerOf(colorOf(g, userID))
	if g.State.IsPromotionPending() {
		ev := notify.FromState(notify.KindPromotionPending, g.ID, g.State)
		ev.Actor, ev.Move = userID, played.String()
		ev.Text = m.text("event.promotion_pending", map[string]any{"Player": name}, "")
		m.publish(ctx, g, ev)
		return g, nil
	}
	ev := notify.FromState(notify.KindMove, g.ID, g.State)
	ev.Actor, ev.Move = userID, played.String()
	ev.Text = m.text("event.move", map[string]any{"Player": name, "Move": played.String()}, "")
	m.publish(ctx, g, ev)
	if g.State.Status == chess.StatusCompleted {
		m.complete(ctx, g)
	}
	return g, nil
}

// Promote resolves the pending promotion of userID's pawn with piece (queen, rook, bishop,
// knight or their letters).
func (m *Manager) Promote(ctx context.Context, gameID, userID, piece string) (*gamestore.Game, error) {
	userID = strings.TrimSpace(userID)
	choice, perr := chess.ParsePieceKind(piece)
	if perr != nil {
		// NoKind is rejected by the engine with the proper ordering of status errors
		choice = chess.NoKind
	}
	var played string
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		color, ok := g.ColorOf(userID)
		if !ok {
			return ErrNotParticipant
		}
		if g.State.Status == chess.StatusActive && g.State.Turn != color {
			return ErrNotYourTurn
		}
		next, err := m.rules.CommitPromotion(g.State, choice)
		if err != nil {
			return err
		}
		played = g.PendingUCI + string(choice.Letter())
		g.MovesUCI = append(g.MovesUCI, played)
		g.PendingUCI = ""
		g.State = next
		g.UpdatedAt = m.now()
		return nil
	})
	if err != nil {
		m.logger.Info("game_promotion_rejected", zap.String("game_id", gameID), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	m.logger.Info("game_promotion", zap.String("game_id", g.ID), zap.String("user_id", userID), zap.String("move", played))
	_, name := g.PlayerOf(colorOf(g, userID))
	ev := notify.FromState(notify.KindMove, g.ID, g.State)
	ev.Actor, ev.Move = userID, played
	ev.Text = m.text("event.move", map[string]any{"Player": name, "Move": played}, "")
	m.publish(ctx, g, ev)
	if g.State.Status == chess.StatusCompleted {
		m.complete(ctx, g)
	}
	return g, nil
}

// Resign ends an active game as a forfeit by userID.
func (m *Manager) Resign(ctx context.Context, gameID, userID string) (*gamestore.Game, error) {
	userID = strings.TrimSpace(userID)
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		color, ok := g.ColorOf(userID)
		if !ok {
			return ErrNotParticipant
		}
		return m.force(g, chess.ReasonForfeit, color)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("game_resign", zap.String("game_id", g.ID), zap.String("resigner", userID))
	m.complete(ctx, g)
	return g, nil
}

// Timeout ends an active game because loser ran out of time.
func (m *Manager) Timeout(ctx context.Context, gameID string, loser chess.Color) (*gamestore.Game, error) {
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		return m.force(g, chess.ReasonTimeout, loser)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("game_timeout", zap.String("game_id", g.ID), zap.String("loser", loser.String()))
	m.complete(ctx, g)
	return g, nil
}

func (m *Manager) force(g *gamestore.Game, reason chess.Reason, loser chess.Color) error {
	if g.State.Status == chess.StatusWaiting {
		return chess.ErrGameNotStarted
	}
	if loser != chess.White && loser != chess.Black {
		return fmt.Errorf("%w: loser %d", chess.ErrInvalidResult, uint8(loser))
	}
	next, err := m.rules.ForceComplete(g.State, reason, loser.Opposite())
	if err != nil {
		return err
	}
	g.State = next
	// the pawn already stands on the last rank; keep the move list in step with the board
	if g.PendingUCI != "" {
		g.MovesUCI = append(g.MovesUCI, g.PendingUCI)
		g.PendingUCI = ""
	}
	g.UpdatedAt = m.now()
	return nil
}

// Cancel withdraws a waiting game. Only its creator may do so.
func (m *Manager) Cancel(ctx context.Context, gameID, userID string) error {
	userID = strings.TrimSpace(userID)
	g, err := m.store.Update(ctx, gameID, func(g *gamestore.Game) error {
		if _, ok := g.ColorOf(userID); !ok {
			return ErrNotParticipant
		}
		if g.State.Status != chess.StatusWaiting {
			return ErrCannotCancel
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, g.ID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	m.logger.Info("game_cancel", zap.String("game_id", g.ID), zap.String("user_id", userID))
	_, name := g.PlayerOf(colorOf(g, userID))
	ev := notify.FromState(notify.KindCancelled, g.ID, g.State)
	ev.Actor = userID
	ev.Text = m.text("event.cancelled", map[string]any{"Player": name, "GameID": g.ID}, "")
	m.publish(ctx, g, ev)
	return nil
}

func (m *Manager) Get(ctx context.Context, gameID string) (*gamestore.Game, error) {
	return m.store.Load(ctx, gameID)
}

// ActiveGameByUser returns the most recently updated active game of userID, or nil.
func (m *Manager) ActiveGameByUser(ctx context.Context, userID string) (*gamestore.Game, error) {
	list, err := m.store.GamesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, g := range list {
		if g.State.Status == chess.StatusActive {
			return g, nil
		}
	}
	return nil, nil
}

func (m *Manager) ListWaiting(ctx context.Context) ([]*gamestore.Game, error) {
	return m.store.ListWaiting(ctx)
}

// Record returns the archived record of a finished game.
func (m *Manager) Record(ctx context.Context, gameID string) (*domain.ChessGame, error) {
	return m.archive.GetResult(ctx, strings.TrimSpace(gameID))
}

// History lists the latest archived games of userID.
func (m *Manager) History(ctx context.Context, userID string, limit int) ([]*domain.ChessGame, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidArgs
	}
	return m.archive.RecentByUser(ctx, strings.TrimSpace(userID), limit)
}

// complete archives and announces a finished game. Failures are logged; the live copy in the
// store already holds the result.
func (m *Manager) complete(ctx context.Context, g *gamestore.Game) {
	rec, err := gamestore.NewRecord(g)
	if err != nil && rec == nil {
		m.logger.Error("game_record_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	if err != nil {
		m.logger.Warn("game_record_san_error", zap.String("game_id", g.ID), zap.Error(err))
	}
	if err := m.archive.SaveResult(ctx, rec); err != nil {
		m.logger.Error("game_result_persist_error", zap.String("game_id", g.ID), zap.String("result", rec.Result), zap.Error(err))
	} else {
		m.logger.Info("game_result_persist", zap.String("game_id", g.ID), zap.String("result", rec.Result), zap.String("method", rec.ResultMethod))
	}

	m.logger.Info("game_complete",
		zap.String("game_id", g.ID),
		zap.String("result", rec.Result),
		zap.String("method", rec.ResultMethod),
		zap.Int("plies", g.State.MoveCount),
	)
	ev := notify.FromState(notify.KindCompleted, g.ID, g.State)
	ev.Text = m.text("event.completed", map[string]any{"Outcome": Outcome(g)}, "")
	m.publish(ctx, g, ev)
}

func (m *Manager) publish(ctx context.Context, g *gamestore.Game, ev notify.Event) {
	ev.White, ev.Black = g.WhiteName, g.BlackName
	if err := m.pub.Publish(ctx, ev); err != nil {
		m.logger.Warn("notify_error", zap.String("game_id", g.ID), zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

func (m *Manager) text(key string, data any, fallback string) string {
	if m.catalog == nil {
		return fallback
	}
	return m.catalog.Text(key, data, fallback)
}

// Outcome describes a finished game in one line, e.g. "white wins by checkmate".
func Outcome(g *gamestore.Game) string {
	res := g.State.Result
	if res == nil {
		return ""
	}
	if res.Winner == nil {
		if res.Reason == chess.ReasonDraw {
			return "draw by " + strings.ReplaceAll(string(res.Draw), "_", " ")
		}
		return "draw by " + string(res.Reason)
	}
	return res.Winner.String() + " wins by " + string(res.Reason)
}

func colorOf(g *gamestore.Game, userID string) chess.Color {
	c, _ := g.ColorOf(userID)
	return c
}
