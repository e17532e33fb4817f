package ui

import (
	"context"
	"fmt"
	"strings"

	"arrivatui/internal/model"
	"arrivatui/internal/query"
	"arrivatui/internal/selection"
	"arrivatui/internal/telemetry"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle = "Arriva Terminal User Interface"

	defaultWidth  = 100
	defaultHeight = 24
	// title, pane title, pane borders, status and help lines
	chromeHeight = 8
)

// searchResultMsg carries the outcome of a trip search back to the update loop.
type searchResultMsg struct {
	outbound []model.Trip
	inbound  []model.Trip
	err      error
}

// AppModel renders a selection.Flow and feeds it key presses.
type AppModel struct {
	ctx     context.Context
	flow    *selection.Flow
	source  selection.TripSource
	metrics *telemetry.Metrics
	help    help.Model

	// While a search runs every key but quit is dropped; quit waits for the search to settle.
	searching   bool
	quitPending bool

	width  int
	height int
}

// NewAppModel creates the model. The flow must not be touched elsewhere while the program runs.
func NewAppModel(ctx context.Context, flow *selection.Flow, source selection.TripSource, metrics *telemetry.Metrics) AppModel {
	return AppModel{
		ctx:     ctx,
		flow:    flow,
		source:  source,
		metrics: metrics,
		help:    help.New(),
	}
}

// Flow exposes the driven flow, mostly for callers inspecting the final model.
func (m AppModel) Flow() *selection.Flow { return m.flow }

func (m AppModel) Searching() bool { return m.searching }

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchResultMsg:
		m.searching = false
		m.flow.Complete(msg.outbound, msg.inbound, msg.err)
		if m.quitPending {
			m.flow.Handle(selection.Quit)
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, isEvent := eventFor(msg)

	if m.searching {
		if isEvent && ev == selection.Quit {
			m.quitPending = true
		}
		return m, nil
	}

	if !isEvent {
		if key.Matches(msg, keys.Switch) && m.flow.HasResults() {
			m.flow.ToggleSide()
		}
		return m, nil
	}

	m.flow.Handle(ev)
	if m.flow.Exited() {
		return m, tea.Quit
	}

	if m.flow.NeedsSearch() {
		q, err := m.flow.Query()
		if err != nil {
			telemetry.LogError("Cannot build trip query", err)
			return m, nil
		}
		m.searching = true
		return m, m.search(q)
	}
	return m, nil
}

func (m AppModel) search(q query.TripQuery) tea.Cmd {
	ctx, source, metrics := m.ctx, m.source, m.metrics
	return func() tea.Msg {
		outbound, inbound, err := selection.Search(ctx, source, q, metrics)
		return searchResultMsg{outbound: outbound, inbound: inbound, err: err}
	}
}

func (m AppModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(appTitle))
	b.WriteString("\n")

	state := m.flow.State()
	if state.Phase == selection.Ready {
		b.WriteString(m.readyView(state))
	} else {
		b.WriteString(m.stopsView(state))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(keys)))
	return b.String()
}

func (m AppModel) size() (width, height int) {
	width, height = m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// paneWidth is the width of one of the two side-by-side panes, padding included.
func (m AppModel) paneWidth() int {
	width, _ := m.size()
	// two panes with border (2) and padding (2) each
	w := width/2 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m AppModel) listHeight() int {
	_, height := m.size()
	h := height - chromeHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (m AppModel) stopsView(state selection.State) string {
	width := m.paneWidth()

	fromTitle := "From:"
	if state.Origin != nil {
		fromTitle += " " + state.Origin.DisplayName()
	}
	from := renderStops(fromTitle, m.flow.Origins(), width-2, m.listHeight())
	to := renderStops("To:", m.flow.Destinations(), width-2, m.listHeight())

	fromStyle, toStyle := activePaneStyle, idlePaneStyle
	if state.Phase == selection.ChoosingDestination {
		fromStyle, toStyle = idlePaneStyle, activePaneStyle
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		fromStyle.Width(width).Render(from),
		toStyle.Width(width).Render(to),
	)
}

// renderStops and renderTrips lay out content for a pane whose inner width is width.
func renderStops(title string, list selection.List[model.Stop], width, height int) string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(truncate(title, width)))

	items := list.Items()
	cursor, hasCursor := list.Cursor()
	start, end := list.Visible(height)
	for i := start; i < end; i++ {
		stop := items[i]
		line := stopIDStyle.Render(fmt.Sprint(stop.ID)) + " - " +
			stopNameStyle.Render(truncate(stop.DisplayName(), width-12))
		if hasCursor && i == cursor {
			line = "->  " + selectedItemStyle.Render(line)
		} else {
			line = "    " + line
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

func (m AppModel) readyView(state selection.State) string {
	var b strings.Builder
	route := fmt.Sprintf("%s → %s", state.Origin.DisplayName(), state.Destination.DisplayName())
	b.WriteString(paneTitleStyle.Render(route))
	b.WriteString("\n")

	switch {
	case m.searching:
		b.WriteString(statusStyle.Render("Searching trips..."))
	case m.flow.HasResults():
		width := m.paneWidth()
		outbound, _ := m.flow.Trips(model.Outbound)
		inbound, _ := m.flow.Trips(model.Return)

		outStyle, retStyle := activePaneStyle, idlePaneStyle
		if m.flow.Focus() == model.Return {
			outStyle, retStyle = idlePaneStyle, activePaneStyle
		}
		outChosen, _ := m.chosen(model.Outbound)
		retChosen, _ := m.chosen(model.Return)

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			outStyle.Width(width).Render(renderTrips("Outward", outbound, outChosen, width-2, m.listHeight()-1)),
			retStyle.Width(width).Render(renderTrips("Return", inbound, retChosen, width-2, m.listHeight()-1)),
		))
		if summary := m.summary(); summary != "" {
			b.WriteString("\n")
			b.WriteString(chosenStyle.Render(summary))
		}
	case m.flow.Err() != nil:
		b.WriteString(errorStyle.Render("Error: " + m.flow.Err().Error()))
		b.WriteString("\n")
		b.WriteString(statusStyle.Render("Press enter to search again."))
	}
	return b.String()
}

func (m AppModel) chosen(side model.Side) (*model.Trip, bool) {
	t, ok := m.flow.Chosen(side)
	if !ok {
		return nil, false
	}
	return &t, true
}

func (m AppModel) summary() string {
	out, outOK := m.flow.Chosen(model.Outbound)
	ret, retOK := m.flow.Chosen(model.Return)
	switch {
	case outOK && retOK:
		return fmt.Sprintf("Outward %s, return %s: %s €", out.Departure, ret.Departure, model.FormatCents(out.Cost+ret.Cost))
	case outOK:
		return fmt.Sprintf("Outward %s: %s €", out.Departure, out.Price())
	case retOK:
		return fmt.Sprintf("Return %s: %s €", ret.Departure, ret.Price())
	}
	return ""
}

func renderTrips(title string, list selection.List[model.Trip], chosen *model.Trip, width, height int) string {
	var b strings.Builder
	b.WriteString(paneTitleStyle.Render(title))
	b.WriteString("\n")

	if list.Len() == 0 {
		b.WriteString(statusStyle.Render("No trips."))
		return b.String()
	}

	// marker and the fixed DEPARTS, ARRIVES and PRICE columns
	lineWidth := width - 4 - 25
	if lineWidth < 8 {
		lineWidth = 8
	}
	b.WriteString("    " + tableHeaderStyle.Render(fmt.Sprintf("%-*s %-7s %-7s %8s", lineWidth, "LINE", "DEPARTS", "ARRIVES", "PRICE(€)")))

	items := list.Items()
	cursor, hasCursor := list.Cursor()
	start, end := list.Visible(height)
	for i := start; i < end; i++ {
		t := items[i]
		row := fmt.Sprintf("%-*s %-7s %-7s %8s", lineWidth, truncate(t.Line, lineWidth), t.Departure, t.Arrival, t.Price())
		marker := "    "
		if chosen != nil && *chosen == t {
			marker = "  ✓ "
			row = chosenStyle.Render(row)
		}
		if hasCursor && i == cursor {
			marker = "->" + marker[2:]
			row = selectedItemStyle.Render(row)
		}
		b.WriteString("\n")
		b.WriteString(marker + row)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, flow *selection.Flow, source selection.TripSource, metrics *telemetry.Metrics, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewAppModel(ctx, flow, source, metrics), opts...)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
