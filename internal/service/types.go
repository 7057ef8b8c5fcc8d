package service

import "github.com/unify-bot/unify-dashboard/internal/welcome"

// TestEmbed is the embed part of a test send
type TestEmbed struct {
	Title       string
	Description string
	Color       welcome.Color
	Thumbnail   string // URL template, empty for none
	Image       string // URL template, empty for none
}

// TestRequest holds parameters for sending a test welcome message.
type TestRequest struct {
	GuildID   string
	ChannelID string // overrides the stored channel when set
	Message   string
	IsEmbed   bool
	Embed     *TestEmbed
	User      welcome.Member // the dashboard user, rendered as the new member
}
