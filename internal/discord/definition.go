package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/slashkit/pkg/args"
	"github.com/keshon/slashkit/pkg/cmd"
)

// GlobalScope is the sync scope of commands without a guild restriction.
const GlobalScope = ""

// Definition builds the application command Discord should publish for a
// root node.
func Definition(root *cmd.Node) *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        root.Name(),
		Description: root.Description(),
		GuildID:     root.GuildID(),
	}

	switch {
	case len(root.Groups()) > 0:
		for _, g := range root.Groups() {
			group := &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        g.Name(),
				Description: g.Description(),
			}
			for _, sub := range g.SubCommands() {
				group.Options = append(group.Options, subCommandOption(sub))
			}
			def.Options = append(def.Options, group)
		}
	case len(root.SubCommands()) > 0:
		for _, sub := range root.SubCommands() {
			def.Options = append(def.Options, subCommandOption(sub))
		}
	default:
		def.Options = argumentOptions(root.Options())
	}
	return def
}

// Definitions groups the definitions of all registered roots by scope:
// GlobalScope plus one entry per guild some root is limited to.
func Definitions(reg *cmd.Registry) map[string][]*discordgo.ApplicationCommand {
	out := map[string][]*discordgo.ApplicationCommand{GlobalScope: {}}
	for _, root := range reg.All() {
		scope := root.GuildID()
		out[scope] = append(out[scope], Definition(root))
	}
	return out
}

func subCommandOption(n *cmd.Node) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        n.Name(),
		Description: n.Description(),
		Options:     argumentOptions(n.Options()),
	}
}

// argumentOptions publishes argument declarations. Discord requires required
// options to come first, so a required argument declared after an optional
// one is published as optional and left to the parser to enforce.
func argumentOptions(opts []args.Option) []*discordgo.ApplicationCommandOption {
	var out []*discordgo.ApplicationCommandOption
	requiredAllowed := true
	for _, o := range opts {
		required := o.Required() && requiredAllowed
		if !o.Required() {
			requiredAllowed = false
		}
		description := o.Description
		if description == "" {
			description = o.Signature
		}
		out = append(out, &discordgo.ApplicationCommandOption{
			Type:        o.Type,
			Name:        o.Name,
			Description: description,
			Required:    required,
		})
	}
	return out
}
