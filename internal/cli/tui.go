package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/matzehuels/siteview/pkg/browser"
	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/render/cells"
)

// Browse styles
var (
	pageActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan).Padding(0, 1)
	pageStyle       = lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	panelLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(11)
	errorBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorRed).Padding(0, 1)
)

const browseHelp = "g generate  ←/→ page  1-9 jump  enter dismiss  q quit"

// =============================================================================
// Messages
// =============================================================================

// generatedMsg carries a finished fetch back to the update loop.
type generatedMsg struct {
	res generate.Result
}

// tickMsg advances the loading spinner.
type tickMsg struct{}

// =============================================================================
// BrowseModel - interactive candidate browser
// =============================================================================

// browseModel is the bubbletea model behind "siteview browse". The browser,
// controller and surfaces are only touched from Update, which bubbletea runs
// on a single goroutine; fetches run as commands and report back through
// generatedMsg.
type browseModel struct {
	ctx       context.Context
	browser   *browser.Browser
	ctrl      *generate.Controller
	grid      *cells.Surface
	board     *render.StatsBoard
	err       error
	autostart bool
	ticking   bool
	frame     int
}

// newBrowseModel wires a browser that renders onto a terminal grid and a
// controller that fetches from client.
func newBrowseModel(ctx context.Context, client generate.Client, tag language.Tag, grid *cells.Surface, opts ...generate.Option) *browseModel {
	m := &browseModel{
		ctx:   ctx,
		grid:  grid,
		board: render.NewStatsBoard(),
	}
	m.browser = browser.New(render.New(grid, m.board, render.WithLocale(tag)))
	opts = append(opts, generate.WithNotifier(generate.NotifierFunc(func(err error) { m.err = err })))
	m.ctrl = generate.NewController(client, m.browser, opts...)
	return m
}

func (m *browseModel) Init() tea.Cmd {
	if m.autostart {
		return m.generate()
	}
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	case generatedMsg:
		m.ctrl.Finish(msg.res)
	case tickMsg:
		if m.ctrl.Loading() {
			m.frame++
			return m, tick()
		}
		m.ticking = false
	}
	return m, nil
}

func (m *browseModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "g":
		return m.generate()
	case "left", "h":
		m.step(-1)
	case "right", "l":
		m.step(1)
	case "enter", "esc":
		m.err = nil
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			// Out-of-range jumps are ignored.
			_ = m.browser.Dispatch(browser.SelectIntent{Index: int(key[0] - '1')})
		}
	}
	return nil
}

// generate starts a request. The fetch runs as a command off the update loop.
func (m *browseModel) generate() tea.Cmd {
	m.err = nil
	fetch := m.ctrl.Begin()
	ctx := m.ctx
	cmds := []tea.Cmd{func() tea.Msg { return generatedMsg{res: fetch(ctx)} }}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, tick())
	}
	return tea.Batch(cmds...)
}

func (m *browseModel) step(delta int) {
	_, i, ok := m.browser.Selected()
	if !ok {
		return
	}
	_ = m.browser.Dispatch(browser.SelectIntent{Index: i + delta})
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

// =============================================================================
// View
// =============================================================================

func (m *browseModel) View() string {
	var b strings.Builder

	header := StyleTitle.Render(appName) + "  " + StyleDim.Render(m.ctrl.Source())
	if l, i, ok := m.browser.Selected(); ok {
		header += "  " + StyleHighlight.Render(l.Title(i))
	}
	b.WriteString(header + "\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.grid.String(), "  ", m.statsPanel()))
	b.WriteString("\n\n")

	if pages := m.pageSelector(); pages != "" {
		b.WriteString(pages + "\n")
	}
	if l, _, ok := m.browser.Selected(); ok {
		if rules := rulesSummary(&l); rules != "" {
			b.WriteString(StyleDim.Render(rules) + "\n")
		}
	}

	switch {
	case m.ctrl.Loading():
		frame := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleIconSpinner.Render(frame) + " " + StyleDim.Render("Generating layouts...") + "\n")
	case m.browser.State() == browser.Empty && m.err == nil:
		b.WriteString(StyleDim.Render("No layouts yet. Press g to generate.") + "\n")
	}
	if m.err != nil {
		msg := StyleError.Render(iconError+" "+errors.UserMessage(m.err)) + "\n" + StyleDim.Render("enter to dismiss")
		b.WriteString(errorBoxStyle.Render(msg) + "\n")
	}

	b.WriteString("\n" + StyleDim.Render(browseHelp))
	return b.String()
}

func (m *browseModel) statsPanel() string {
	stats, ok := m.board.Stats()
	if !ok {
		stats = render.Stats{TowersA: "-", TowersB: "-", BuiltArea: "-", Status: "-"}
	}
	rows := []struct{ label, value string }{
		{"Towers A", stats.TowersA},
		{"Towers B", stats.TowersB},
		{"Built area", stats.BuiltArea + " m²"},
		{"Status", stats.Status},
	}
	if !ok {
		rows[2].value = "-"
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		value := StyleValue.Render(r.value)
		if r.label == "Status" && ok {
			value = StyleSuccess.Render(r.value)
		}
		lines[i] = panelLabelStyle.Render(r.label) + value
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *browseModel) pageSelector() string {
	controls := m.browser.Controls()
	if len(controls) == 0 {
		return ""
	}
	parts := make([]string, len(controls))
	for i, c := range controls {
		if c.Active {
			parts[i] = pageActiveStyle.Render(c.Label)
		} else {
			parts[i] = pageStyle.Render(c.Label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...) + StyleDim.Render(fmt.Sprintf("  %d layouts", len(controls)))
}
