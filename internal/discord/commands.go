// Package discord holds the slash command definitions, the dispatcher that
// turns an application command interaction into a reply, and the REST
// adapters used to deliver replies and log channel notices.
package discord

import (
	"github.com/bwmarrin/discordgo"

	"urenlogger/internal/core"
)

// Command names.
const (
	CmdRegistreer = "registreer"
	CmdLog        = "log"
	CmdWijzig     = "wijzig"
	CmdVerwijder  = "verwijder"
	CmdUren       = "uren"
	CmdEmail      = "email"
)

// Option and subcommand names.
const (
	OptNaam         = "naam"
	OptUren         = "uren"
	OptOmschrijving = "omschrijving"
	OptDatum        = "datum"
	OptMaand        = "maand"
	OptAddress      = "address"

	SubSet    = "set"
	SubRemove = "remove"
	SubShow   = "show"
)

// MinEditHours is the lower bound Discord enforces on /wijzig.
const MinEditHours = 0.5

func floatPtr(f float64) *float64 { return &f }

// Commands returns the slash commands the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdRegistreer,
			Description: "Registreer of wijzig je naam voor het loggen van werkuren",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptNaam,
					Description: "Je volledige naam (zoals deze in rapporten moet verschijnen)",
					Required:    true,
				},
			},
		},
		{
			Name:        CmdLog,
			Description: "Log je werkuren",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        OptUren,
					Description: "Aantal gewerkte uren",
					Required:    true,
					MinValue:    floatPtr(core.MinHours),
					MaxValue:    core.MaxHours,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptOmschrijving,
					Description: "Waar heb je aan gewerkt?",
					MaxLength:   core.MaxDescriptionLength,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptDatum,
					Description: `Datum (bijv. "vandaag", "gisteren", "22 okt", standaard: vandaag)`,
				},
			},
		},
		{
			Name:        CmdWijzig,
			Description: "Wijzig je gelogde uren voor een specifieke dag",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        OptUren,
					Description: "Nieuw aantal uren",
					Required:    true,
					MinValue:    floatPtr(MinEditHours),
					MaxValue:    core.MaxHours,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptDatum,
					Description: `Datum om te wijzigen (bijv. "vandaag", "gisteren", "15 okt")`,
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptOmschrijving,
					Description: "Nieuwe omschrijving (optioneel)",
					MaxLength:   core.MaxDescriptionLength,
				},
			},
		},
		{
			Name:        CmdVerwijder,
			Description: "Verwijder je gelogde uren voor een specifieke dag",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptDatum,
					Description: `Datum om te verwijderen (bijv. "vandaag", "gisteren", "15 okt")`,
					Required:    true,
				},
			},
		},
		{
			Name:        CmdUren,
			Description: "Bekijk je gelogde uren",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptMaand,
					Description: `Maand om te bekijken (bijv. "feb 2024", "maart 2025")`,
				},
			},
		},
		{
			Name:        CmdEmail,
			Description: "Beheer je e-mail voor het ontvangen van maandrapport kopies",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubSet,
					Description: "Stel je e-mailadres in of wijzig het",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        OptAddress,
							Description: "Je e-mailadres",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubRemove,
					Description: "Verwijder je e-mailadres",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        SubShow,
					Description: "Toon je huidige e-mailadres",
				},
			},
		},
	}
}

// IsKnownCommand reports whether name is one of Commands().
func IsKnownCommand(name string) bool {
	switch name {
	case CmdRegistreer, CmdLog, CmdWijzig, CmdVerwijder, CmdUren, CmdEmail:
		return true
	}
	return false
}
