package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"arrivatui/internal/model"
	"arrivatui/internal/query"
	"arrivatui/internal/selection"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var askOne = survey.AskOne

var tripsCmd = &cobra.Command{
	Use:   "trips [from] [to] [date]",
	Short: "Search trips between two stops and print them",
	Long: `Runs one search without the interactive UI. Stops are given by id and
must exist in the catalogue.
Missing stops are picked from the catalogue with a prompt, and the date is
asked for too in that case. Otherwise the date defaults to --date or today.`,
	Example: `  arrivatui trips 5274 4802 19-04-2024
  arrivatui trips`,
	Args: cobra.MaximumNArgs(3),
	RunE: runTrips,
}

func init() {
	rootCmd.AddCommand(tripsCmd)
}

func runTrips(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	stops, err := selection.LoadCatalogue(ctx, a.catalogue)
	if err != nil {
		return fmt.Errorf("failed to load stops: %w", err)
	}

	var (
		chosen   [2]model.Stop
		prompted bool
	)
	for i, label := range []string{"Origin", "Destination"} {
		if i < len(args) {
			stop, err := findStop(stops, args[i])
			if err != nil {
				return err
			}
			chosen[i] = stop
			continue
		}

		stop, err := promptStop(label, stops)
		if err != nil {
			return err
		}
		chosen[i] = stop
		prompted = true
	}

	date := a.cfg.Date
	if len(args) > 2 {
		date = args[2]
	}
	if date == "" && prompted {
		if date, err = promptDate(query.Today(time.Now)); err != nil {
			return err
		}
	}

	q := query.FromStops(chosen[0], chosen[1], date, time.Now)
	if err := query.ValidateDate(q.Date); err != nil {
		return err
	}
	return searchAndPrint(ctx, cmd.OutOrStdout(), a, chosen[0], chosen[1], q)
}

// findStop resolves a stop id argument against the catalogue.
func findStop(stops []model.Stop, arg string) (model.Stop, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return model.Stop{}, fmt.Errorf("invalid stop id %q", arg)
	}
	for _, s := range stops {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Stop{}, fmt.Errorf("unknown stop id %d, run 'arrivatui stops' to list them", id)
}

func searchAndPrint(ctx context.Context, w io.Writer, a *app, origin, destination model.Stop, q query.TripQuery) error {
	outbound, inbound, err := selection.Search(ctx, a.client, q, a.metrics)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Trips %s → %s on %s\n\n", origin, destination, q.Date)
	printTrips(w, "Outward", outbound)
	fmt.Fprintln(w)
	printTrips(w, "Return", inbound)
	return nil
}

func promptStop(label string, stops []model.Stop) (model.Stop, error) {
	options := make([]string, len(stops))
	for i, s := range stops {
		options[i] = s.String()
	}

	var choice string
	prompt := &survey.Select{
		Message:  label + ":",
		Options:  options,
		PageSize: 15,
	}
	if err := askOne(prompt, &choice); err != nil {
		return model.Stop{}, fmt.Errorf("%s prompt failed: %w", label, err)
	}

	for _, s := range stops {
		if s.String() == choice {
			return s, nil
		}
	}
	return model.Stop{}, fmt.Errorf("unknown stop %q", choice)
}

func promptDate(today string) (string, error) {
	date := today
	prompt := &survey.Input{
		Message: "Date (DD-MM-YYYY):",
		Default: today,
	}
	validate := survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		return query.ValidateDate(s)
	})
	if err := askOne(prompt, &date, validate); err != nil {
		return "", fmt.Errorf("date prompt failed: %w", err)
	}
	return date, nil
}

func printTrips(w io.Writer, title string, trips []model.Trip) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(trips))
	if len(trips) == 0 {
		fmt.Fprintln(w, "No trips.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LINE", "DEPARTS", "ARRIVES", "PRICE(€)")
	for _, trip := range trips {
		t.Row(trip.Line, trip.Departure, trip.Arrival, trip.Price())
	}
	fmt.Fprintln(w, t.Render())
}
