// Package editor provides the Bubble Tea record editor.
package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

// Store is the record file the editor works on.
type Store interface {
	LoadAll() ([]model.Record, error)
	RewriteAll(records []model.Record) error
}

type mode int

const (
	modeTable mode = iota
	modeForm
	modeConfirm
)

const (
	fieldDate = iota
	fieldDeck
	fieldCoin
	fieldTurn
	fieldOpponent
	fieldResult
	fieldRank
	fieldRate
	fieldMemo
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Date (YYYY/MM/DD): ",
	"Deck: ",
	"Coin (heads/tails): ",
	"Turn (first/second): ",
	"Opponent deck: ",
	"Result (win/loss): ",
	"Rank: ",
	"Rate: ",
	"Memo: ",
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea editor UI. Edits stay in memory until
// saved; the dirty flag tracks whether the session differs from the file.
type Model struct {
	store Store
	now   func() time.Time

	records    []model.Record
	dirty      bool
	loadFailed bool

	mode      mode
	table     table.Model
	inputs    []textinput.Model
	formIndex int
	editIndex int
	formError string
	// memo keeps the raw memo while the input shows it on one line.
	memo      string
	memoShown string

	errMsg string
	notice string

	width  int
	height int
}

// NewModel loads the records from st. A nil now uses time.Now.
func NewModel(st Store, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	m := &Model{store: st, now: now, editIndex: -1}
	m.initTable()
	m.initInputs()
	m.load()
	return m
}

// Dirty reports whether the session has unsaved changes.
func (m *Model) Dirty() bool {
	return m.dirty
}

// Records returns the records of the session in file order.
func (m *Model) Records() []model.Record {
	return append([]model.Record(nil), m.records...)
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
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m *Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
		if m.dirty {
			m.mode = modeConfirm
			return m, nil
		}
		return m, tea.Quit
	}
	switch msg.String() {
	case "a":
		if m.loadFailed {
			return m, nil
		}
		rec := model.Record{Date: m.now().Format(model.DateLayout)}
		if n := len(m.records); n > 0 {
			last := m.records[n-1]
			rec.Deck, rec.Rank, rec.Rate = last.Deck, last.Rank, last.Rate
		}
		return m, m.openForm(-1, rec)
	case "d":
		m.deleteSelected()
		return m, nil
	case "e", "enter":
		idx := m.table.Cursor()
		if idx < 0 || idx >= len(m.records) {
			return m, nil
		}
		return m, m.openForm(idx, m.records[idx])
	case "s":
		m.saveRecords()
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.closeForm()
		if m.dirty {
			m.mode = modeConfirm
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEsc:
		m.closeForm()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyForm(); err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.closeForm()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFormIndex(m.formIndex - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.formIndex], cmd = m.inputs[m.formIndex].Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s", "y":
		if m.saveRecords() {
			return m, tea.Quit
		}
		m.mode = modeTable
		return m, nil
	case "d", "n":
		return m, tea.Quit
	case "c", "esc":
		m.mode = modeTable
		return m, nil
	}
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.mode {
	case modeForm:
		return fitLines(m.renderForm(), m.width, m.height)
	case modeConfirm:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderConfirm())
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := m.table.View()
	if len(m.records) == 0 {
		body = "No records. Press a to add one."
	}
	return strings.Join([]string{
		fitLines(header, m.width, lipgloss.Height(header)),
		fitLines(body, m.width, bodyHeight),
		fitLines(footer, m.width, lipgloss.Height(footer)),
	}, "\n")
}

func (m *Model) load() {
	records, err := m.store.LoadAll()
	switch {
	case errors.Is(err, record.ErrStoreUnavailable):
		m.records = nil
		m.notice = "No record file yet. Saving creates it."
	case err != nil:
		m.records = nil
		m.loadFailed = true
		m.errMsg = fmt.Sprintf("failed to load records: %v", err)
	default:
		m.records = records
	}
	m.dirty = false
	m.refreshRows()
}

func (m *Model) saveRecords() bool {
	if m.loadFailed {
		m.errMsg = "records failed to load; refusing to overwrite the file"
		return false
	}
	if err := m.store.RewriteAll(m.records); err != nil {
		m.errMsg = fmt.Sprintf("failed to save records: %v", err)
		return false
	}
	m.errMsg = ""
	m.dirty = false
	m.notice = fmt.Sprintf("Saved %d records.", len(m.records))
	return true
}

func (m *Model) deleteSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return
	}
	m.records = append(m.records[:idx], m.records[idx+1:]...)
	m.dirty = true
	m.notice = fmt.Sprintf("Deleted row %d.", idx+1)
	m.refreshRows()
	if idx >= len(m.records) && idx > 0 {
		idx = len(m.records) - 1
	}
	m.table.SetCursor(idx)
}

func (m *Model) openForm(idx int, rec model.Record) tea.Cmd {
	m.mode = modeForm
	m.editIndex = idx
	m.formError = ""
	values := recordFields(rec)
	values[fieldMemo] = rec.Memo
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
	}
	m.memo = rec.Memo
	m.memoShown = m.inputs[fieldMemo].Value()
	return m.setFormIndex(0)
}

func (m *Model) closeForm() {
	m.mode = modeTable
	m.editIndex = -1
	m.formError = ""
	m.memo, m.memoShown = "", ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// applyForm validates the form and stores it into the session.
func (m *Model) applyForm() error {
	rec, err := m.formRecord()
	if err != nil {
		return err
	}
	if m.editIndex < 0 {
		m.records = append(m.records, rec)
		m.notice = fmt.Sprintf("Added row %d.", len(m.records))
		m.refreshRows()
		m.table.SetCursor(len(m.records) - 1)
	} else {
		m.records[m.editIndex] = rec
		m.notice = fmt.Sprintf("Updated row %d.", m.editIndex+1)
		m.refreshRows()
	}
	m.dirty = true
	return nil
}

func (m *Model) formRecord() (model.Record, error) {
	value := func(i int) string {
		return strings.TrimSpace(m.inputs[i].Value())
	}
	coin, ok := model.ParseCoin(value(fieldCoin))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown coin %q", value(fieldCoin))
	}
	turn, ok := model.ParseTurn(value(fieldTurn))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown turn %q", value(fieldTurn))
	}
	result, ok := model.ParseResult(value(fieldResult))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown result %q", value(fieldResult))
	}
	memo := m.inputs[fieldMemo].Value()
	if memo == m.memoShown {
		memo = m.memo
	}
	rank := model.Rank(value(fieldRank))
	if rank != "" && !rank.Known() {
		return model.Record{}, fmt.Errorf("unknown rank %q", rank)
	}
	rec := model.Record{
		Date:         value(fieldDate),
		Deck:         value(fieldDeck),
		Coin:         coin,
		Turn:         turn,
		OpponentDeck: value(fieldOpponent),
		Result:       result,
		Rank:         rank,
		Rate:         model.ParseRate(value(fieldRate)),
		Memo:         memo,
	}.Normalize()
	if err := model.ValidateEntry(rec); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	if idx < 0 {
		idx = fieldCount - 1
	}
	if idx >= fieldCount {
		idx = 0
	}
	m.formIndex = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.formIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) initInputs() {
	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		input := textinput.New()
		input.Prompt = fieldLabels[i]
		input.CharLimit = 0
		input.Cursor.SetMode(cursor.CursorBlink)
		m.inputs[i] = input
	}
}

func (m *Model) initTable() {
	m.table = table.New(
		table.WithColumns(tableColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.table.SetStyles(tableStyles())
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	reserved := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderFooter())
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(2, m.height-reserved))
	for i := range m.inputs {
		promptWidth := lipgloss.Width(m.inputs[i].Prompt)
		m.inputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.records))
	for i, rec := range m.records {
		fields := recordFields(rec)
		rows = append(rows, append(table.Row{strconv.Itoa(i + 1)}, fields[:]...))
	}
	m.table.SetRows(rows)
	if len(rows) == 0 {
		m.table.SetCursor(0)
	} else if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func recordFields(rec model.Record) [fieldCount]string {
	return [fieldCount]string{
		rec.Date,
		rec.Deck,
		string(rec.Coin),
		string(rec.Turn),
		rec.OpponentDeck,
		string(rec.Result),
		string(rec.Rank),
		strconv.Itoa(rec.Rate),
		strings.ReplaceAll(rec.Memo, "\n", " "),
	}
}

func tableColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Date", Width: 10},
		{Title: "Deck", Width: 14},
		{Title: "Coin", Width: 5},
		{Title: "Turn", Width: 6},
		{Title: "Opponent", Width: 14},
		{Title: "Result", Width: 6},
		{Title: "Rank", Width: 4},
		{Title: "Rate", Width: 5},
		{Title: "Memo", Width: 20},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render(fmt.Sprintf("Records (%d)", len(m.records)))
	if m.dirty {
		title += " " + dirtyStyle.Render("[modified]")
	}
	return title
}

func (m *Model) renderFooter() string {
	lines := []string{headerStyle.Render("Add: a  Edit: e/enter  Delete: d  Save: s  Quit: q")}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	} else if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderForm() string {
	title := "Add record"
	if m.editIndex >= 0 {
		title = fmt.Sprintf("Edit row %d", m.editIndex+1)
	}
	lines := []string{titleStyle.Render(title), ""}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	lines = append(lines, "", headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel"))
	if m.formError != "" {
		lines = append(lines, errorStyle.Render(m.formError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConfirm() string {
	lines := []string{
		titleStyle.Render("Unsaved changes"),
		"",
		"s: save and quit",
		"d: discard and quit",
		"c: cancel",
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	return modalStyle.Render(strings.Join(lines, "\n"))
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
