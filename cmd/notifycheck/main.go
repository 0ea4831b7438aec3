// Command notifycheck sends one test event to the configured webhook and websocket endpoints
// and reports what happened.
package main

import (
	"context"
	"log"
	"time"

	"github.com/park285/cheese-chess/internal/chess"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/notify"
	"github.com/park285/cheese-chess/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.NotifyWebhookURL == "" && cfg.NotifyWSURL == "" {
		log.Fatal("NOTIFY_WEBHOOK_URL or NOTIFY_WS_URL is required")
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	headers := notify.StaticHeaders(map[string]string{
		"X-User-ID":    cfg.XUserID,
		"X-Session-ID": cfg.XSessionID,
	})
	ev := notify.FromState(notify.KindCreated, "notifycheck", chess.NewGame())
	ev.Actor = "notifycheck"
	ev.Text = "notification check"
	ev.At = time.Now().UTC()

	if cfg.NotifyWebhookURL != "" {
		hook := notify.NewWebhookPublisher(cfg.NotifyWebhookURL,
			notify.WithHeaderProvider(headers),
			notify.WithTimeout(cfg.NotifyTimeout()),
			notify.WithRetry(cfg.NotifyRetry),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := hook.Publish(ctx, ev); err != nil {
			log.Printf("webhook error: %v", err)
		} else {
			log.Printf("webhook ok: %s", cfg.NotifyWebhookURL)
		}
		cancel()
	}

	if cfg.NotifyWSURL == "" {
		log.Println("NOTIFY_WS_URL not set; skipping WS check")
		return
	}
	ws := notify.NewWSPublisher(cfg.NotifyWSURL, obslog.L(), notify.WithWSHeaders(headers), notify.WithReconnect(0))
	defer ws.Close(context.Background())

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v (state=%s)", err, ws.State())
		return
	}
	if err := ws.Publish(cctx, ev); err != nil {
		log.Printf("WS publish error: %v", err)
		return
	}
	log.Printf("WS ok: %s (state=%s)", cfg.NotifyWSURL, ws.State())
}
