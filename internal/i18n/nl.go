// Package i18n holds the Dutch texts the bot replies with.
package i18n

import (
	"fmt"
	"strconv"
	"strings"
)

// Hours renders an hour amount the way users typed it: 8, 7.5, 0.25.
func Hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// Registration.
func RegisterSuccess(name string) string {
	return fmt.Sprintf("Je bent geregistreerd als **%s**!\n\nJe kunt nu `/log` gebruiken om je uren te loggen.", name)
}

func RegisterUpdated(oldName, newName string) string {
	return fmt.Sprintf("Je naam is bijgewerkt van **%s** naar **%s**!", oldName, newName)
}

const RegisterError = "Er is een fout opgetreden bij het registreren. Probeer het later opnieuw."

// Logging hours.
const (
	LogNotRegistered   = "Je moet je eerst registreren!\n\nGebruik `/registreer naam: Jouw Volledige Naam` om te registreren."
	LogError           = "Er is een fout opgetreden bij het loggen van je uren. Probeer het opnieuw."
	LogFutureDateError = "Je kunt geen uren loggen voor een datum in de toekomst."
)

func LogSuccess(hours float64, date, description string) string {
	msg := fmt.Sprintf("**%s uur** gelogd op **%s**!", Hours(hours), date)
	if description != "" {
		msg += "\n" + description
	}
	return msg
}

func LogDuplicate(existing float64, date string) string {
	return fmt.Sprintf("Je hebt al **%s uur** gelogd op **%s**.\n\nGebruik `/wijzig` om je uren aan te passen of `/verwijder` om ze te verwijderen.", Hours(existing), date)
}

func LogInvalidHours(min, max float64) string {
	return fmt.Sprintf("Ongeldig aantal uren. Kies een waarde tussen %s en %s.", Hours(min), Hours(max))
}

func InvalidDate(input string) string {
	return fmt.Sprintf("Ongeldige datum: %q. Gebruik formaten zoals \"vandaag\", \"gisteren\", \"22 okt\", of \"2025-10-22\".", input)
}

// Viewing hours (/uren).
const (
	UrenSeparator = "─────────────────────────────\n\n"
	UrenError     = "Er is een fout opgetreden bij het ophalen van je uren. Probeer het opnieuw."
)

func UrenNoHours(period string) string {
	return fmt.Sprintf("Geen uren gelogd voor **%s**.", period)
}

func UrenHeader(period string) string {
	return fmt.Sprintf("**Jouw Gelogde Uren** (%s)\n\n", period)
}

func UrenTotal(hours float64) string {
	return fmt.Sprintf("**Totaal: %.2f uur**\n", hours)
}

func UrenCount(n int) string {
	return fmt.Sprintf("**Aantal: %d**\n\n", n)
}

func UrenEntry(index int, date string, hours float64, description string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d.** %s - **%su**\n", index, date, Hours(hours))
	if description != "" {
		fmt.Fprintf(&b, "   %s\n", description)
	}
	b.WriteString("\n")
	return b.String()
}

func UrenInvalidMonth(input string) string {
	return fmt.Sprintf("Ongeldige maand: %q. Gebruik formaten zoals \"feb 2024\" of \"maart 2025\".", input)
}

// Editing hours (/wijzig).
const (
	WijzigNotRegistered = "Je moet je eerst registreren met `/registreer` voordat je uren kunt wijzigen."
	WijzigError         = "Er is een fout opgetreden bij het wijzigen van de uren. Probeer het opnieuw."
)

func WijzigNoEntries(date string) string {
	return fmt.Sprintf("Geen uren gevonden voor %s.\n\nGebruik `/log` om eerst uren toe te voegen.", date)
}

func WijzigSuccess(date string, oldHours, newHours float64, oldDesc, newDesc string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Uren bijgewerkt voor %s**\n\n", date)
	fmt.Fprintf(&b, "**Oud:** %su", Hours(oldHours))
	if oldDesc != "" {
		b.WriteString(" - " + oldDesc)
	}
	fmt.Fprintf(&b, "\n**Nieuw:** %su", Hours(newHours))
	if newDesc != "" {
		b.WriteString(" - " + newDesc)
	}
	return b.String()
}

// Deleting hours (/verwijder).
const (
	VerwijderNotRegistered = "Je moet je eerst registreren met `/registreer` voordat je uren kunt verwijderen."
	VerwijderError         = "Er is een fout opgetreden bij het verwijderen van de uren. Probeer het opnieuw."
)

func VerwijderNoEntries(date string) string {
	return fmt.Sprintf("Geen uren gevonden voor %s.\n\nEr valt niets te verwijderen.", date)
}

func VerwijderSuccess(date string, hours float64, description string) string {
	msg := fmt.Sprintf("**Uren verwijderd voor %s**\n\n**Verwijderd:** %su", date, Hours(hours))
	if description != "" {
		msg += " - " + description
	}
	return msg
}

// Email management.
const (
	EmailNotRegistered = "Je moet je eerst registreren met `/registreer` voordat je je e-mail kunt beheren."
	EmailInvalidFormat = "Ongeldig e-mailadres. Voer een geldig e-mailadres in."
	EmailShowNone      = "**Geen e-mail geregistreerd**\n\nJe ontvangt momenteel geen kopie van maandelijkse rapporten.\n\nGebruik `/email set` om je e-mailadres toe te voegen."
	EmailError         = "Er is een fout opgetreden bij het beheren van je e-mail."
)

func EmailSetSuccess(email string, isUpdate bool) string {
	verb := "ingesteld"
	if isUpdate {
		verb = "bijgewerkt"
	}
	return fmt.Sprintf("**E-mail %s!**\n\nJe ontvangt een kopie van maandelijkse rapporten op: **%s**\n\nJe kunt dit aanpassen met `/email set` of verwijderen met `/email remove`.", verb, email)
}

func EmailRemoveSuccess(email string) string {
	return fmt.Sprintf("**E-mail verwijderd!**\n\nJe ontvangt geen kopie meer van maandelijkse rapporten op **%s**.", email)
}

func EmailShowCurrent(email string) string {
	return fmt.Sprintf("**Je geregistreerde e-mail:**\n**%s**\n\nJe ontvangt een kopie van maandelijkse rapporten op dit adres.\n\nGebruik `/email set` om te wijzigen of `/email remove` om te verwijderen.", email)
}

// General.
const (
	ErrGeneric        = "Er is een fout opgetreden bij het uitvoeren van dit commando!"
	ErrUnknownCommand = "Onbekend commando."
)

// UnknownCommand is the immediate reply to a command the bot does not know.
func UnknownCommand(name string) string {
	return "Onbekend commando: " + name
}

// Log channel notices.
func ReportSentNotice(period string, users int, hours float64, recipients int) string {
	return fmt.Sprintf("📧 Maandrapport verzonden voor **%s**: %d medewerkers, %.2f uur, %d ontvangers.", period, users, hours, recipients)
}

func ReportFailedNotice(period string, err error) string {
	return fmt.Sprintf("⚠️ Maandrapport voor **%s** kon niet worden verzonden: %v", period, err)
}
