package discord

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultCDN = "https://cdn.discordapp.com"

// IconResolver picks a guild icon URL, preferring webp when the CDN has it
type IconResolver struct {
	client  *http.Client
	cdnBase string
}

// NewIconResolver creates a resolver probing the Discord CDN
func NewIconResolver(timeout time.Duration) *IconResolver {
	return &IconResolver{
		client:  &http.Client{Timeout: timeout},
		cdnBase: defaultCDN,
	}
}

// IconURL returns the webp icon URL when a HEAD probe answers 2xx, the png
// URL when it answers anything else, and "" when the guild has no icon or
// the probe fails.
func (r *IconResolver) IconURL(ctx context.Context, guildID, icon string) string {
	if icon == "" {
		return ""
	}
	webp := fmt.Sprintf("%s/icons/%s/%s.webp?size=128", r.cdnBase, guildID, icon)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, webp, nil)
	if err != nil {
		return ""
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return webp
	}
	return fmt.Sprintf("%s/icons/%s/%s.png?size=128", r.cdnBase, guildID, icon)
}
