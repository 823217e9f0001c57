package discord

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"urenlogger/internal/core"
	"urenlogger/internal/dates"
	"urenlogger/internal/i18n"
	"urenlogger/internal/services"
)

// Dispatcher routes application commands to the hours service and renders
// the Dutch reply.
type Dispatcher struct {
	hours *services.HoursService
}

func NewDispatcher(hours *services.HoursService) *Dispatcher {
	return &Dispatcher{hours: hours}
}

// Execute runs the command carried by i and returns the reply text. Errors
// never escape: every failure is turned into a user-facing message.
func (d *Dispatcher) Execute(ctx context.Context, i *discordgo.Interaction) string {
	if i.Type != discordgo.InteractionApplicationCommand {
		return i18n.ErrUnknownCommand
	}
	data := i.ApplicationCommandData()
	userID := UserID(i)
	opts := newOptionMap(data.Options)

	switch data.Name {
	case CmdRegistreer:
		return d.registreer(ctx, userID, opts)
	case CmdLog:
		return d.log(ctx, userID, opts)
	case CmdWijzig:
		return d.wijzig(ctx, userID, opts)
	case CmdVerwijder:
		return d.verwijder(ctx, userID, opts)
	case CmdUren:
		return d.uren(ctx, userID, opts)
	case CmdEmail:
		return d.email(ctx, userID, data.Options)
	default:
		return i18n.UnknownCommand(data.Name)
	}
}

func (d *Dispatcher) registreer(ctx context.Context, userID string, opts optionMap) string {
	name, _ := opts.str(OptNaam)
	res, err := d.hours.Register(ctx, userID, name)
	if err != nil {
		slog.ErrorContext(ctx, "Error registering user", "user_id", userID, "error", err)
		return i18n.RegisterError
	}
	if res.Updated {
		return i18n.RegisterUpdated(res.PreviousName, res.Name)
	}
	return i18n.RegisterSuccess(res.Name)
}

func (d *Dispatcher) log(ctx context.Context, userID string, opts optionMap) string {
	hours, ok := opts.number(OptUren)
	if !ok {
		return i18n.LogError
	}
	desc, _ := opts.str(OptOmschrijving)
	token, _ := opts.str(OptDatum)

	entry, err := d.hours.LogHours(ctx, services.LogRequest{
		UserID:      userID,
		Hours:       hours,
		Description: desc,
		DateToken:   token,
	})
	if err != nil {
		var (
			pe  *dates.ParseError
			dup *services.DuplicateDayError
		)
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			return i18n.LogNotRegistered
		case errors.As(err, &pe):
			return pe.Message()
		case errors.Is(err, dates.ErrFutureDate):
			return i18n.LogFutureDateError
		case errors.As(err, &dup):
			return i18n.LogDuplicate(dup.ExistingHours, dates.FormatWithWeekday(dup.Date))
		case errors.Is(err, core.ErrInvalidHours):
			return i18n.LogInvalidHours(core.MinHours, core.MaxHours)
		}
		slog.ErrorContext(ctx, "Error in /log command", "user_id", userID, "error", err)
		return i18n.LogError
	}
	return i18n.LogSuccess(entry.Hours, dates.FormatWithWeekday(entry.Date), entry.Description)
}

func (d *Dispatcher) wijzig(ctx context.Context, userID string, opts optionMap) string {
	hours, ok := opts.number(OptUren)
	if !ok {
		return i18n.WijzigError
	}
	token, _ := opts.str(OptDatum)
	req := services.EditRequest{UserID: userID, Hours: hours, DateToken: token}
	if desc, ok := opts.str(OptOmschrijving); ok {
		req.Description = &desc
	}

	res, err := d.hours.EditHours(ctx, req)
	if err != nil {
		var pe *dates.ParseError
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			return i18n.WijzigNotRegistered
		case errors.As(err, &pe):
			return pe.Message()
		case errors.Is(err, core.ErrNoEntriesForDay):
			return i18n.WijzigNoEntries(dates.FormatWithWeekday(res.Date))
		case errors.Is(err, core.ErrInvalidHours):
			return i18n.LogInvalidHours(MinEditHours, core.MaxHours)
		}
		slog.ErrorContext(ctx, "Error editing hours", "user_id", userID, "error", err)
		return i18n.WijzigError
	}
	return i18n.WijzigSuccess(dates.FormatWithWeekday(res.Date), res.OldHours, res.NewHours, res.OldDescription, res.NewDescription)
}

func (d *Dispatcher) verwijder(ctx context.Context, userID string, opts optionMap) string {
	token, _ := opts.str(OptDatum)

	res, err := d.hours.DeleteHours(ctx, userID, token)
	if err != nil {
		var pe *dates.ParseError
		switch {
		case errors.Is(err, core.ErrUserNotFound):
			return i18n.VerwijderNotRegistered
		case errors.As(err, &pe):
			return pe.Message()
		case errors.Is(err, core.ErrNoEntriesForDay):
			return i18n.VerwijderNoEntries(dates.FormatWithWeekday(res.Date))
		}
		slog.ErrorContext(ctx, "Error deleting hours", "user_id", userID, "error", err)
		return i18n.VerwijderError
	}
	return i18n.VerwijderSuccess(dates.FormatWithWeekday(res.Date), res.Hours, res.Description)
}

func (d *Dispatcher) uren(ctx context.Context, userID string, opts optionMap) string {
	month, _ := opts.str(OptMaand)

	ov, err := d.hours.ListHours(ctx, userID, month)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMonth) {
			return i18n.UrenInvalidMonth(month)
		}
		slog.ErrorContext(ctx, "Error fetching hours", "user_id", userID, "error", err)
		return i18n.UrenError
	}
	if len(ov.Entries) == 0 {
		return i18n.UrenNoHours(ov.Period.Label)
	}

	var b strings.Builder
	b.WriteString(i18n.UrenHeader(ov.Period.Label))
	b.WriteString(i18n.UrenTotal(ov.TotalHours))
	b.WriteString(i18n.UrenCount(len(ov.Entries)))
	b.WriteString(i18n.UrenSeparator)
	for n, e := range ov.Entries {
		b.WriteString(i18n.UrenEntry(n+1, dates.FormatWithWeekday(e.Date), e.Hours, e.Description))
	}
	return b.String()
}

func (d *Dispatcher) email(ctx context.Context, userID string, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	sub := subcommand(opts)
	if sub == nil {
		return i18n.ErrUnknownCommand
	}

	var (
		res services.EmailResult
		err error
	)
	switch sub.Name {
	case SubSet:
		addr, _ := newOptionMap(sub.Options).str(OptAddress)
		res, err = d.hours.SetEmail(ctx, userID, addr)
		if err == nil {
			return i18n.EmailSetSuccess(res.Email, res.Previous != "")
		}
	case SubRemove:
		res, err = d.hours.RemoveEmail(ctx, userID)
		if err == nil {
			return i18n.EmailRemoveSuccess(res.Previous)
		}
	case SubShow:
		res, err = d.hours.ShowEmail(ctx, userID)
		if err == nil {
			return i18n.EmailShowCurrent(res.Email)
		}
	default:
		return i18n.ErrUnknownCommand
	}

	switch {
	case errors.Is(err, core.ErrUserNotFound):
		return i18n.EmailNotRegistered
	case errors.Is(err, core.ErrInvalidEmail):
		return i18n.EmailInvalidFormat
	case errors.Is(err, core.ErrNoEmailOnAccount):
		return i18n.EmailShowNone
	}
	slog.ErrorContext(ctx, "Error in /email command", "user_id", userID, "subcommand", sub.Name, "error", err)
	return i18n.EmailError
}
