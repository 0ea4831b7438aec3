package gamestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-chess/internal/domain"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chess_games (
	game_id       TEXT PRIMARY KEY,
	white_id      TEXT NOT NULL,
	white_name    TEXT NOT NULL,
	black_id      TEXT NOT NULL,
	black_name    TEXT NOT NULL,
	result        TEXT NOT NULL,
	result_method TEXT NOT NULL,
	moves_uci     JSONB NOT NULL,
	moves_san     JSONB NOT NULL,
	pgn           TEXT NOT NULL,
	final_fen     TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS chess_games_white_idx ON chess_games (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS chess_games_black_idx ON chess_games (black_id, ended_at DESC);`

// OpenPostgres opens DATABASE_URL with the lib/pq driver and pings it.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PostgresArchive keeps finished games in the chess_games table.
type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

// EnsureSchema creates the table and indexes when missing.
func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create chess_games: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SaveResult upserts rec keyed by game id.
func (a *PostgresArchive) SaveResult(ctx context.Context, rec *domain.ChessGame) error {
	if rec == nil {
		return fmt.Errorf("nil chess game payload")
	}
	movesUCI, err := json.Marshal(nonNil(rec.MovesUCI))
	if err != nil {
		return fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(nonNil(rec.MovesSAN))
	if err != nil {
		return fmt.Errorf("marshal moves_san: %w", err)
	}

	const q = `
		INSERT INTO chess_games (
			game_id, white_id, white_name, black_id, black_name,
			result, result_method, moves_uci, moves_san, pgn, final_fen,
			started_at, ended_at, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb,$9::jsonb,$10,$11,$12,$13,$14)
		ON CONFLICT (game_id) DO UPDATE SET
			white_id=EXCLUDED.white_id,
			white_name=EXCLUDED.white_name,
			black_id=EXCLUDED.black_id,
			black_name=EXCLUDED.black_name,
			result=EXCLUDED.result,
			result_method=EXCLUDED.result_method,
			moves_uci=EXCLUDED.moves_uci,
			moves_san=EXCLUDED.moves_san,
			pgn=EXCLUDED.pgn,
			final_fen=EXCLUDED.final_fen,
			started_at=EXCLUDED.started_at,
			ended_at=EXCLUDED.ended_at,
			duration_ms=EXCLUDED.duration_ms`

	_, err = a.db.ExecContext(ctx, q,
		rec.GameID,
		rec.WhiteID, rec.WhiteName,
		rec.BlackID, rec.BlackName,
		rec.Result, rec.ResultMethod,
		string(movesUCI), string(movesSAN),
		rec.PGN, rec.FinalFEN,
		rec.StartedAt, rec.EndedAt, rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("upsert chess game: %w", err)
	}
	return nil
}

const selectColumns = `
	game_id, white_id, white_name, black_id, black_name,
	result, result_method, moves_uci, moves_san, pgn, final_fen,
	started_at, ended_at, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.ChessGame, error) {
	var (
		rec        domain.ChessGame
		uciJSON    []byte
		sanJSON    []byte
		durationMS sql.NullInt64
	)
	if err := row.Scan(
		&rec.GameID, &rec.WhiteID, &rec.WhiteName, &rec.BlackID, &rec.BlackName,
		&rec.Result, &rec.ResultMethod, &uciJSON, &sanJSON, &rec.PGN, &rec.FinalFEN,
		&rec.StartedAt, &rec.EndedAt, &durationMS,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(uciJSON, &rec.MovesUCI); err != nil {
		return nil, fmt.Errorf("decode moves_uci: %w", err)
	}
	if err := json.Unmarshal(sanJSON, &rec.MovesSAN); err != nil {
		return nil, fmt.Errorf("decode moves_san: %w", err)
	}
	if durationMS.Valid {
		rec.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	return &rec, nil
}

func (a *PostgresArchive) GetResult(ctx context.Context, gameID string) (*domain.ChessGame, error) {
	row := a.db.QueryRowContext(ctx, `SELECT`+selectColumns+` FROM chess_games WHERE game_id = $1`, gameID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select chess game: %w", err)
	}
	return rec, nil
}

func (a *PostgresArchive) RecentByUser(ctx context.Context, userID string, limit int) ([]*domain.ChessGame, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT`+selectColumns+` FROM chess_games WHERE white_id = $1 OR black_id = $1 ORDER BY ended_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chess games: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.ChessGame, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chess game: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
