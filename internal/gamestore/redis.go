package gamestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	"github.com/redis/go-redis/v9"
)

const defaultUpdateRetries = 5

// RedisStore keeps each game as JSON under chess:game:<id>, with a per-user index set and a
// lobby set of waiting games. Updates use WATCH/MULTI optimistic locking.
type RedisStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	retries int
}

type RedisOption func(*RedisStore)

// WithUpdateRetries bounds how often Update re-runs after losing a race.
func WithUpdateRetries(n int) RedisOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.retries = n
		}
	}
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &RedisStore{rdb: rdb, ttl: ttl, retries: defaultUpdateRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis parses REDIS_URL, connects and pings.
func DialRedis(ctx context.Context, raw string) (*redis.Client, error) {
	opts, err := ParseRedisURL(raw)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ParseRedisURL accepts redis://[:password@]host:port/db and rediss://.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

func gameKey(id string) string        { return "chess:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "chess:index:user:" + strings.TrimSpace(userID) }
func lobbyKey() string                { return "chess:lobby" }

func (s *RedisStore) Create(ctx context.Context, g *Game) error {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return errors.New("game id required")
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, gameKey(g.ID), raw, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	pipe := s.rdb.TxPipeline()
	s.index(ctx, pipe, g)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Game, error) {
	return s.get(ctx, s.rdb, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, id string) (*Game, error) {
	raw, err := c.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(g *Game) error) (*Game, error) {
	key := gameKey(id)
	var out *Game
	txf := func(tx *redis.Tx) error {
		cur, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}
		raw, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("marshal game: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			s.index(ctx, pipe, cur)
			return nil
		})
		if err != nil {
			return err
		}
		out = cur
		return nil
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

// index keeps the user sets and the lobby in step with g.
func (s *RedisStore) index(ctx context.Context, pipe redis.Pipeliner, g *Game) {
	for _, uid := range g.Participants() {
		pipe.SAdd(ctx, idxUserKey(uid), g.ID)
		// 인덱스 키 TTL도 게임 TTL과 동일하게 갱신
		pipe.Expire(ctx, idxUserKey(uid), s.ttl)
	}
	if g.State.Status == chess.StatusWaiting {
		pipe.ZAdd(ctx, lobbyKey(), redis.Z{Score: float64(g.CreatedAt.UnixNano()), Member: g.ID})
	} else {
		pipe.ZRem(ctx, lobbyKey(), g.ID)
	}
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	g, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.ZRem(ctx, lobbyKey(), id)
	for _, uid := range g.Participants() {
		pipe.SRem(ctx, idxUserKey(uid), id)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) GamesByUser(ctx context.Context, userID string) ([]*Game, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	ids, err := s.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	var list []*Game
	var stale []any
	for _, id := range ids {
		g, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	if len(stale) > 0 {
		// 만료된 게임 id 정리
		_ = s.rdb.SRem(ctx, idxUserKey(userID), stale...).Err()
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (s *RedisStore) ListWaiting(ctx context.Context) ([]*Game, error) {
	ids, err := s.rdb.ZRange(ctx, lobbyKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var out []*Game
	for _, id := range ids {
		g, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			_ = s.rdb.ZRem(ctx, lobbyKey(), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if g.State.Status != chess.StatusWaiting {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}
