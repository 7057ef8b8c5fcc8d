package welcome

import (
	"fmt"
	"strconv"
	"time"
)

const cdnBase = "https://cdn.discordapp.com"

// Fallbacks used when the triggering user or guild lacks a field
const (
	fallbackUsername      = "Usuario"
	fallbackDiscriminator = "0000"
	fallbackGuildName     = "este servidor"
	fallbackMemberCount   = "muchos"

	presetWelcomeMessage = "¡Bienvenido al servidor!"
	presetWelcomeRules   = "Por favor lee las reglas del servidor."
)

// Member is the user a welcome message is rendered for
type Member struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        string
}

// Guild is the server a welcome message is rendered in
type Guild struct {
	ID          string
	Name        string
	MemberCount int
}

// AvatarURL returns the member's avatar, or Discord's default avatar when
// the member has none.
func (m Member) AvatarURL() string {
	if m.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBase, m.ID, m.Avatar)
	}
	idx := uint64(0)
	if id, err := strconv.ParseUint(m.ID, 10, 64); err == nil {
		idx = (id >> 22) % 6
	}
	return fmt.Sprintf("%s/embed/avatars/%d.png", cdnBase, idx)
}

// NewVariables builds the variable set for one render. Dates use the
// Spanish short formats (d/m/yyyy).
func NewVariables(m Member, g Guild, now time.Time) Variables {
	username := orDefault(m.Username, fallbackUsername)
	discriminator := orDefault(m.Discriminator, fallbackDiscriminator)
	guildName := orDefault(g.Name, fallbackGuildName)
	memberCount := fallbackMemberCount
	if g.MemberCount > 0 {
		memberCount = strconv.Itoa(g.MemberCount)
	}
	avatar := m.AvatarURL()

	var v Variables
	v.Set("user", username)
	v.Set("server", guildName)
	v.Set("guild", guildName)

	v.Set("user.name", username)
	v.Set("user.tag", username+"#"+discriminator)
	v.Set("user.mention", "<@"+m.ID+">")
	v.Set("user.id", m.ID)
	v.Set("user.avatar", avatar)
	v.Set("user.avatarURL", avatar)
	v.Set("user.discriminator", discriminator)

	v.Set("server.name", guildName)
	v.Set("guild.name", guildName)
	v.Set("server.id", g.ID)
	v.Set("guild.id", g.ID)
	v.Set("server.memberCount", memberCount)
	v.Set("guild.memberCount", memberCount)

	v.Set("date", now.Format("2/1/2006"))
	v.Set("time", now.Format("15:04:05"))
	v.Set("datetime", now.Format("2/1/2006, 15:04:05"))

	v.Set("welcome.message", presetWelcomeMessage)
	v.Set("welcome.rules", presetWelcomeRules)
	return v
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
