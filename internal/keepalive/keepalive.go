// Package keepalive pings the dashboard's public URL on a schedule so free
// hosting tiers do not put the process to sleep.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/unify-bot/unify-dashboard/internal/config"
)

// DefaultInterval is used when no interval is configured
const DefaultInterval = 14 * time.Minute

// Pinger periodically requests a URL
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
}

// New creates a pinger from the keep-alive settings
func New(cfg config.KeepAliveConfig) (*Pinger, error) {
	if cfg.URL == "" {
		return nil, errors.New("keepalive.url (APP_URL) is required")
	}
	interval := DefaultInterval
	if cfg.IntervalMinutes > 0 {
		interval = time.Duration(cfg.IntervalMinutes) * time.Minute
	}
	return &Pinger{
		url:      cfg.URL,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Ping requests the URL once
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keep-alive ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Run pings immediately and then every interval until ctx is cancelled
func (p *Pinger) Run(ctx context.Context) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	_, err := s.Every(p.interval).Do(func() {
		if err := p.Ping(ctx); err != nil {
			slog.Warn("Keep-alive ping failed", "url", p.url, "error", err)
			return
		}
		slog.Debug("Keep-alive ping sent", "url", p.url)
	})
	if err != nil {
		return fmt.Errorf("schedule keep-alive: %w", err)
	}

	slog.Info("Keep-alive started", "url", p.url, "interval", p.interval)
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	slog.Info("Keep-alive stopped")
	return nil
}
