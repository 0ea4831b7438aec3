package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	GameTTLSec        int
	ChessHistoryLimit int

	NotifyWebhookURL    string
	NotifyWSURL         string
	NotifyChannelPrefix string
	NotifyTimeoutMS     int
	NotifyRetry         int

	// 알림 요청에 붙일 인증 헤더
	XUserID    string
	XSessionID string

	MessagesDir string
}

// GameTTL is the lifetime of a live game in the store.
func (c *AppConfig) GameTTL() time.Duration {
	return time.Duration(c.GameTTLSec) * time.Second
}

// NotifyTimeout bounds a single notification attempt.
func (c *AppConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutMS) * time.Millisecond
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:            ":8080",
		GameTTLSec:          86400,
		ChessHistoryLimit:   0,
		NotifyChannelPrefix: "chess:game:",
		NotifyTimeoutMS:     5000,
		NotifyRetry:         3,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("GAME_TTL_SEC")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("GAME_TTL_SEC must be a positive integer: %q", v)
		}
		cfg.GameTTLSec = n
	}
	// 0이면 전체 기록 유지
	if v := strings.TrimSpace(os.Getenv("CHESS_HISTORY_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("CHESS_HISTORY_LIMIT must be >= 0: %q", v)
		}
		cfg.ChessHistoryLimit = n
	}

	cfg.NotifyWebhookURL = strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL"))
	cfg.NotifyWSURL = strings.TrimSpace(os.Getenv("NOTIFY_WS_URL"))
	if v := strings.TrimSpace(os.Getenv("NOTIFY_CHANNEL_PREFIX")); v != "" {
		cfg.NotifyChannelPrefix = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTIFY_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NotifyTimeoutMS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("NOTIFY_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.NotifyRetry = n
		}
	}

	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if cfg.NotifyWebhookURL != "" {
		if err := checkURL(cfg.NotifyWebhookURL, "http", "https"); err != nil {
			return nil, fmt.Errorf("NOTIFY_WEBHOOK_URL: %w", err)
		}
	}
	if cfg.NotifyWSURL != "" {
		if err := checkURL(cfg.NotifyWSURL, "ws", "wss"); err != nil {
			return nil, fmt.Errorf("NOTIFY_WS_URL: %w", err)
		}
	}
	if cfg.HTTPAddr == "" {
		return nil, errors.New("HTTP_ADDR is required")
	}

	return cfg, nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if strings.EqualFold(u.Scheme, s) && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("expected %s URL, got %q", strings.Join(schemes, "/"), raw)
}
