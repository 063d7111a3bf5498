package cmd

import "strings"

// Path names the target of an invocation. Group and SubCommand are empty when
// the root itself is called.
type Path struct {
	Command    string
	Group      string
	SubCommand string
}

func (p Path) String() string {
	parts := []string{p.Command}
	if p.Group != "" {
		parts = append(parts, p.Group)
	}
	if p.SubCommand != "" {
		parts = append(parts, p.SubCommand)
	}
	return strings.Join(parts, " ")
}

// Event is the transport-neutral input of one invocation. Token-stream
// adapters fill Tokens; structured adapters set Structured and fill Options
// keyed by argument name. Data carries the adapter payload (for Discord, the
// session and the originating interaction or message).
type Event struct {
	Path       Path
	Tokens     []string
	Options    map[string]any
	Structured bool

	GuildID   string
	ChannelID string
	UserID    string
	Private   bool

	Data any
}
