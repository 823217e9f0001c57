package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"urenlogger/internal/dates"
	"urenlogger/internal/i18n"
)

var parseDateCmd = &cobra.Command{
	Use:   "parse-date [expression]",
	Short: "Resolve a date expression the way /log does",
	Example: `  urenctl parse-date gisteren
  urenctl parse-date 22 okt`,
	Args: cobra.ArbitraryArgs,
	RunE: runParseDate,
}

var periodCmd = &cobra.Command{
	Use:   "period [month]",
	Short: "Show the billing period for today or a month",
	Example: `  urenctl period
  urenctl period feb 2024`,
	Args: cobra.ArbitraryArgs,
	RunE: runPeriod,
}

func runParseDate(cmd *cobra.Command, args []string) error {
	_, loc, err := loadConfig()
	if err != nil {
		return err
	}
	now := nowFunc().In(loc)
	token := strings.Join(args, " ")

	d, err := dates.ParseDate(token, now)
	if err != nil {
		var pe *dates.ParseError
		if errors.As(err, &pe) {
			return errors.New(pe.Message())
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", d.Key(), dates.FormatWithWeekday(d))
	if errors.Is(dates.ValidateNotFuture(d, now), dates.ErrFutureDate) {
		fmt.Fprintln(out, i18n.LogFutureDateError)
	}
	fmt.Fprintf(out, "Periode: %s\n", dates.CurrentPeriod(d.Time).Label)
	return nil
}

func runPeriod(cmd *cobra.Command, args []string) error {
	_, loc, err := loadConfig()
	if err != nil {
		return err
	}
	now := nowFunc().In(loc)

	p := dates.CurrentPeriod(now)
	if len(args) > 0 {
		token := strings.Join(args, " ")
		var ok bool
		if p, ok = dates.PeriodForMonth(token, now); !ok {
			return errors.New(i18n.UrenInvalidMonth(token))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.StartKey(), p.EndKey(), p.Label)
	return nil
}
