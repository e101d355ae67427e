// Package reportui provides the Bubble Tea monthly report interface.
package reportui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/stats"
)

const (
	plotHeight   = 12
	defaultWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	monthStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Options configures a report model.
type Options struct {
	// Source is reloaded on every month change.
	Source stats.Loader
	// Views become tabs, in order. Empty shows every view.
	Views []config.View
	// Settings holds the chart types. It is updated in place by the toggle.
	Settings *config.Settings
	// Save persists settings after a chart toggle. Nil keeps the change in memory.
	Save func(config.Settings) error
	// Now is the clock for the month navigator. Nil uses time.Now.
	Now func() time.Time
	// Month opens a month other than the current one when set.
	Month *calendar.Month
}

// Model implements the Bubble Tea report UI.
type Model struct {
	source   stats.Loader
	settings *config.Settings
	save     func(config.Settings) error
	nav      *calendar.Navigator

	report stats.Report
	errMsg string
	notice string

	views     []config.View
	activeTab int
	viewports []viewport.Model

	width  int
	height int
}

// NewModel constructs a report UI model and loads the first month.
func NewModel(opts Options) *Model {
	settings := opts.Settings
	if settings == nil {
		s := config.DefaultSettings()
		settings = &s
	}
	views := dedupeViews(opts.Views)
	if len(views) == 0 {
		views = append(views, config.Views...)
	}
	m := &Model{
		source:   opts.Source,
		settings: settings,
		save:     opts.Save,
		nav:      calendar.NewNavigator(opts.Now),
		views:    views,
	}
	if opts.Month != nil && !m.nav.Goto(*opts.Month) {
		m.notice = fmt.Sprintf("Cannot open %s: it is after the current month.", opts.Month)
	}
	m.viewports = make([]viewport.Model, len(m.views))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Month returns the month on display.
func (m *Model) Month() calendar.Month {
	return m.nav.Cursor()
}

// ActiveView returns the view of the selected tab.
func (m *Model) ActiveView() config.View {
	return m.views[m.activeTab]
}

// Report returns the report of the month on display.
func (m *Model) Report() stats.Report {
	return m.report
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			m.stepMonth(calendar.StepPrev)
			return m, nil
		case "]":
			m.stepMonth(calendar.StepNext)
			return m, nil
		case ".":
			m.stepMonth(calendar.StepCurrent)
			return m, nil
		case "t":
			m.toggleChart()
			return m, nil
		case "r":
			m.notice = ""
			m.refreshReport()
			return m, nil
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.viewports[m.activeTab].View(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) stepMonth(step int) {
	m.notice = ""
	if !m.nav.Step(step) {
		m.notice = "Already at the current month."
		return
	}
	m.refreshReport()
}

func (m *Model) toggleChart() {
	view := m.views[m.activeTab]
	if !m.settings.ToggleChart(view) {
		return
	}
	m.notice = ""
	if m.save != nil {
		if err := m.save(*m.settings); err != nil {
			m.notice = fmt.Sprintf("failed to save settings: %v", err)
		}
	}
	m.renderTabContents()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.notice != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.views)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(m.source, m.nav.Cursor())
	if err != nil {
		m.errMsg = err.Error()
		m.report = stats.Report{Month: m.nav.Cursor()}
		m.renderTabContents()
		return
	}
	m.errMsg = ""
	m.report = report
	if report.StoreMissing && m.notice == "" {
		m.notice = "No records yet. Add one with: mdlog add"
	}
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load records.")
		}
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	for i, view := range m.views {
		m.viewports[i].SetContent(m.renderView(view, width))
	}
}

func (m *Model) renderView(view config.View, width int) string {
	switch view {
	case config.ViewSummary:
		return renderSummaryCards(m.report.Summary, width)
	case config.ViewRateGraph:
		return m.renderRateGraph(width)
	case config.ViewEnvironment:
		style := stats.StylePie
		if m.settings.GraphType == config.GraphBar {
			style = stats.StyleBar
		}
		return strings.Join(stats.DistributionLines(m.report.Decks, style, width), "\n")
	}
	return ""
}

func (m *Model) renderRateGraph(width int) string {
	var buf bytes.Buffer
	var err error
	if m.settings.RateGraphType == config.RateGraphRank {
		opts := stats.RankAxis(rankLabels())
		opts.Height = plotHeight
		opts.Width = stats.PlotWidthFor(width, 2)
		opts.ForceColor = true
		err = stats.PlotSeries(&buf, "Rank", m.report.Ranks, opts)
	} else {
		opts := stats.RateAxis()
		opts.Height = plotHeight
		opts.Width = stats.PlotWidthFor(width, rateAxisWidth(m.report.Rates))
		opts.ForceColor = true
		err = stats.PlotSeries(&buf, "Rate", m.report.Rates, opts)
	}
	if err != nil {
		return fmt.Sprintf("Failed to render graph: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderSummaryCards(s stats.Summary, width int) string {
	if s.TotalMatches == 0 {
		return "No matches this month."
	}
	cards := []string{
		metricCard("Matches", fmt.Sprintf("%d", s.TotalMatches)),
		metricCard("Win rate", percent(s.WinRate)),
		metricCard("Heads", fmt.Sprintf("%d / %d", s.HeadsCount, s.TailsCount)),
		metricCard("Heads rate", percent(s.HeadsRate)),
		metricCard("First turn", percent(s.FirstTurnRate)),
		metricCard("Win (heads)", percent(s.HeadsWinRate)),
		metricCard("Win (tails)", percent(s.TailsWinRate)),
		metricCard("First (heads)", percent(s.HeadsFirstTurnRate)),
		metricCard("First (tails)", percent(s.TailsFirstTurnRate)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0:5]...)
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[5:]...)
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.views))
	for i, view := range m.views {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(viewTitle(view)))
		} else {
			parts = append(parts, inactiveNavStyle.Render(viewTitle(view)))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	month := monthStyle.Render(m.nav.Cursor().String())
	hint := "[ prev"
	if m.nav.CanNext() {
		hint += "  ] next"
	}
	line := month + "  " + headerStyle.Render(hint+"  . current")
	return tabs + "\n" + padLine(line, m.width)
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Month: [ ] .  Scroll: up/down  Reload: r  Quit: q"
	if view := m.views[m.activeTab]; view == config.ViewRateGraph || view == config.ViewEnvironment {
		help = "Nav: left/right  Month: [ ] .  Chart: t  Reload: r  Quit: q"
	}
	lines := []string{headerStyle.Render(truncateLine(help, m.width))}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(truncateLine(m.errMsg, m.width)))
	} else if m.notice != "" {
		lines = append(lines, noticeStyle.Render(truncateLine(m.notice, m.width)))
	}
	return strings.Join(lines, "\n")
}

func viewTitle(view config.View) string {
	switch view {
	case config.ViewSummary:
		return "Summary"
	case config.ViewRateGraph:
		return "Rate"
	case config.ViewEnvironment:
		return "Environment"
	}
	return string(view)
}

func dedupeViews(views []config.View) []config.View {
	seen := map[config.View]bool{}
	out := make([]config.View, 0, len(views))
	for _, v := range views {
		if seen[v] || !v.Known() {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func rankLabels() []string {
	labels := make([]string, len(model.Ranks))
	for i, r := range model.Ranks {
		labels[i] = string(r)
	}
	return labels
}

func rateAxisWidth(points []stats.Point) int {
	width := 1
	for _, p := range points {
		width = max(width, len(fmt.Sprintf("%d", int(p.Value))))
	}
	return width
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return stats.Truncate(s, width)
}
