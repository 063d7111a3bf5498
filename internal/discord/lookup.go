package discord

import (
	"context"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/retrylimit"
)

// StateLookup resolves users, channels and roles from the session state and
// falls back to REST. Ids Discord does not know resolve to nil.
type StateLookup struct {
	s *discordgo.Session
}

func NewStateLookup(s *discordgo.Session) *StateLookup {
	return &StateLookup{s: s}
}

func (l *StateLookup) User(ctx context.Context, id string) (*discordgo.User, error) {
	u, err := l.s.User(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, unknownIsNil(err)
	}
	return u, nil
}

func (l *StateLookup) Channel(ctx context.Context, id string) (*discordgo.Channel, error) {
	if l.s.State != nil {
		if ch, err := l.s.State.Channel(id); err == nil {
			return ch, nil
		}
	}
	ch, err := l.s.Channel(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, unknownIsNil(err)
	}
	return ch, nil
}

func (l *StateLookup) Role(ctx context.Context, guildID, id string) (*discordgo.Role, error) {
	if l.s.State != nil {
		if r, err := l.s.State.Role(guildID, id); err == nil {
			return r, nil
		}
	}
	roles, err := l.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, unknownIsNil(err)
	}
	for _, r := range roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

// unknownIsNil drops Discord's "unknown entity" responses so the caller
// reports a nil entity instead of a fault.
func unknownIsNil(err error) error {
	switch retrylimit.StatusCode(err) {
	case http.StatusNotFound, http.StatusBadRequest:
		return nil
	}
	return err
}
