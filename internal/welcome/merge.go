package welcome

// Partial is an update to a welcome configuration where every field may be absent
type Partial struct {
	Enabled   Optional[bool]   `json:"enabled"`
	ChannelID Optional[string] `json:"channelId"`
	Message   Optional[string] `json:"message"`
	ImageURL  Optional[string] `json:"imageUrl"`
	Embed     PartialEmbed     `json:"embed"`
}

// PartialEmbed is the embed part of a Partial
type PartialEmbed struct {
	Enabled     Optional[bool]   `json:"enabled"`
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Color       Optional[Color]  `json:"color"`
	Thumbnail   Optional[bool]   `json:"thumbnail"`
	Footer      Optional[string] `json:"footer"`
	Image       Optional[string] `json:"image"`
}

// Merge layers incoming over existing over Defaults and returns a complete
// configuration. A nil existing means nothing is stored yet. Fields of
// existing are taken as-is, except an unset color which falls back to the
// default.
func Merge(existing *Config, incoming Partial) Config {
	out := Defaults()
	if existing != nil {
		defaultColor := out.Embed.Color
		out = *existing
		if out.Embed.Color.IsZero() {
			out.Embed.Color = defaultColor
		}
	}

	out.Enabled = incoming.Enabled.OrElse(out.Enabled)
	out.ChannelID = incoming.ChannelID.OrElse(out.ChannelID)
	out.Message = incoming.Message.OrElse(out.Message)
	out.ImageURL = incoming.ImageURL.OrElse(out.ImageURL)

	e := incoming.Embed
	out.Embed.Enabled = e.Enabled.OrElse(out.Embed.Enabled)
	out.Embed.Title = e.Title.OrElse(out.Embed.Title)
	out.Embed.Description = e.Description.OrElse(out.Embed.Description)
	if c, ok := e.Color.Get(); ok && !c.IsZero() {
		out.Embed.Color = c
	}
	out.Embed.Thumbnail = e.Thumbnail.OrElse(out.Embed.Thumbnail)
	out.Embed.Footer = e.Footer.OrElse(out.Embed.Footer)
	out.Embed.Image = e.Image.OrElse(out.Embed.Image)

	return out
}
