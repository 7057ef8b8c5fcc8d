// Package welcome holds the welcome-message configuration model and the pure
// logic around it: merging partial updates, normalizing colors and resolving
// template variables.
package welcome

// Default values for a freshly created welcome configuration
const (
	DefaultMessage          = "¡Bienvenido {user} al servidor!"
	DefaultEmbedTitle       = "¡Bienvenido!"
	DefaultEmbedDescription = "Bienvenido {user} a {server}!"
	DefaultEmbedColor       = "#0099ff"
	DefaultEmbedFooter      = "Gracias por unirte"
)

// Config is the welcome block stored for each guild
type Config struct {
	Enabled   bool   `json:"enabled"`
	ChannelID string `json:"channelId"`
	Message   string `json:"message"`
	ImageURL  string `json:"imageUrl"`
	Embed     Embed  `json:"embed"`
}

// Embed describes the rich variant of the welcome message
type Embed struct {
	Enabled     bool   `json:"enabled"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       Color  `json:"color"`
	Thumbnail   bool   `json:"thumbnail"`
	Footer      string `json:"footer"`
	Image       string `json:"image"`
}

// Defaults returns the canonical welcome configuration.
// The embed starts disabled; plain-text messages are the out-of-the-box behavior.
func Defaults() Config {
	return Config{
		Enabled:   false,
		ChannelID: "",
		Message:   DefaultMessage,
		ImageURL:  "",
		Embed: Embed{
			Enabled:     false,
			Title:       DefaultEmbedTitle,
			Description: DefaultEmbedDescription,
			Color:       HexColor(DefaultEmbedColor),
			Thumbnail:   true,
			Footer:      DefaultEmbedFooter,
			Image:       "",
		},
	}
}
