package discord

import (
	"github.com/bwmarrin/discordgo"
)

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(opts))
	for _, o := range opts {
		if o != nil {
			m[o.Name] = o
		}
	}
	return m
}

// str returns the named string option and whether it was sent.
func (m optionMap) str(name string) (string, bool) {
	o, ok := m[name]
	if !ok || o.Type != discordgo.ApplicationCommandOptionString || o.Value == nil {
		return "", false
	}
	v, ok := o.Value.(string)
	return v, ok
}

// number returns the named number option and whether it was sent.
func (m optionMap) number(name string) (float64, bool) {
	o, ok := m[name]
	if !ok || o.Value == nil {
		return 0, false
	}
	switch o.Type {
	case discordgo.ApplicationCommandOptionNumber, discordgo.ApplicationCommandOptionInteger:
	default:
		return 0, false
	}
	v, ok := o.Value.(float64)
	return v, ok
}

// subcommand returns the first subcommand option, if any.
func subcommand(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o != nil && o.Type == discordgo.ApplicationCommandOptionSubCommand {
			return o
		}
	}
	return nil
}

// UserID returns the invoking user in both guild and DM contexts.
func UserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
