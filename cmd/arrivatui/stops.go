package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"arrivatui/internal/model"
	"arrivatui/internal/selection"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops [filter]",
	Short: "List the stop catalogue",
	Long: `Lists every stop as "id - name". An optional filter keeps the stops whose
id or name contains it, ignoring case.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStops,
}

func init() {
	stopsCmd.Flags().Bool("markdown", false, "Render the list as a markdown table")
	rootCmd.AddCommand(stopsCmd)
}

func runStops(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	stops, err := selection.LoadCatalogue(cmd.Context(), a.catalogue)
	if err != nil {
		return fmt.Errorf("failed to load stops: %w", err)
	}

	var filter string
	if len(args) > 0 {
		filter = args[0]
	}
	stops = filterStops(stops, filter)

	out := cmd.OutOrStdout()
	if len(stops) == 0 {
		fmt.Fprintf(out, "No stops match %q\n", filter)
		return nil
	}

	markdown, _ := cmd.Flags().GetBool("markdown")
	if markdown {
		return renderStopsMarkdown(out, stops, a.cfg.NoColor)
	}
	for _, s := range stops {
		fmt.Fprintln(out, s.String())
	}
	return nil
}

func filterStops(stops []model.Stop, filter string) []model.Stop {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return stops
	}

	var matched []model.Stop
	for _, s := range stops {
		if strings.Contains(strconv.Itoa(s.ID), filter) ||
			strings.Contains(strings.ToLower(s.Name), filter) ||
			strings.Contains(strings.ToLower(s.WebName), filter) {
			matched = append(matched, s)
		}
	}
	return matched
}

func stopsMarkdown(stops []model.Stop) string {
	var b strings.Builder
	b.WriteString("# Stops\n\n")
	b.WriteString("| ID | Name | Latitude | Longitude |\n")
	b.WriteString("|---:|------|---------:|----------:|\n")
	for _, s := range stops {
		var latPtr, lonPtr *float64
		if lat, lon, ok := s.Position(); ok {
			latPtr, lonPtr = &lat, &lon
		}
		name := strings.ReplaceAll(s.DisplayName(), "|", `\|`)
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", s.ID, name, model.FormatCoord(latPtr), model.FormatCoord(lonPtr))
	}
	return b.String()
}

func renderStopsMarkdown(w io.Writer, stops []model.Stop, noColor bool) error {
	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	md := stopsMarkdown(stops)
	out, err := renderer.Render(md)
	if err != nil {
		// Fallback to plain text
		fmt.Fprint(w, md)
		return nil
	}
	fmt.Fprint(w, out)
	return nil
}
