package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

type memStore struct {
	records []model.Record
	loadErr error
	saveErr error
	saved   [][]model.Record
}

func (s *memStore) LoadAll() ([]model.Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]model.Record(nil), s.records...), nil
}

func (s *memStore) RewriteAll(records []model.Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, append([]model.Record(nil), records...))
	s.records = append([]model.Record(nil), records...)
	return nil
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 3, 9, 0, 0, 0, time.Local)
}

func seed() []model.Record {
	return []model.Record{
		{Date: "2024/03/01", Deck: "ユベル", Coin: model.CoinHeads, Turn: model.TurnFirst, OpponentDeck: "A", Result: model.ResultWin, Rank: "G3", Rate: 1500},
		{Date: "2024/03/02", Deck: "ユベル", Coin: model.CoinTails, Turn: model.TurnSecond, OpponentDeck: "B", Result: model.ResultLoss, Rank: "G2", Rate: 1490},
	}
}

func TestDeleteMarksDirtyAndSaveClearsIt(t *testing.T) {
	st := &memStore{records: seed()}
	m := NewModel(st, fixedNow)
	if m.Dirty() {
		t.Fatalf("fresh session should be clean")
	}
	m.Update(key("d"))
	if !m.Dirty() || len(m.Records()) != 1 || m.Records()[0].OpponentDeck != "B" {
		t.Fatalf("unexpected state after delete: dirty=%v records=%+v", m.Dirty(), m.Records())
	}
	if len(st.saved) != 0 {
		t.Fatalf("delete must not write the file")
	}
	m.Update(key("s"))
	if m.Dirty() {
		t.Fatalf("expected clean session after save")
	}
	if len(st.saved) != 1 || len(st.saved[0]) != 1 {
		t.Fatalf("unexpected saves: %+v", st.saved)
	}
}

func TestQuitWithUnsavedChangesAsks(t *testing.T) {
	st := &memStore{records: seed()}
	m := NewModel(st, fixedNow)
	m.Update(key("d"))

	if _, cmd := m.Update(key("q")); cmd != nil {
		t.Fatalf("expected confirm prompt instead of quit")
	}
	if m.mode != modeConfirm {
		t.Fatalf("expected confirm mode")
	}
	m.Update(key("c"))
	if m.mode != modeTable || !m.Dirty() {
		t.Fatalf("cancel should return to the table with changes kept")
	}

	m.Update(key("q"))
	if _, cmd := m.Update(key("s")); cmd == nil {
		t.Fatalf("expected quit after save")
	}
	if len(st.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(st.saved))
	}
}

func TestCtrlCInFormWithUnsavedChangesAsks(t *testing.T) {
	st := &memStore{records: seed()}
	m := NewModel(st, fixedNow)
	m.Update(key("d"))
	m.Update(key("e"))
	if m.mode != modeForm {
		t.Fatalf("expected form mode")
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd != nil {
		t.Fatalf("expected confirm prompt instead of quit")
	}
	if m.mode != modeConfirm || !m.Dirty() {
		t.Fatalf("expected confirm mode with changes kept")
	}
	m.Update(key("c"))
	if m.mode != modeTable {
		t.Fatalf("cancel should return to the table")
	}
	if len(st.saved) != 0 {
		t.Fatalf("expected no save, got %d", len(st.saved))
	}
}

func TestCtrlCInFormCleanSessionQuits(t *testing.T) {
	m := NewModel(&memStore{records: seed()}, fixedNow)
	m.Update(key("e"))
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatalf("expected quit for a clean session")
	}
}

func TestQuitDiscardLeavesFileAlone(t *testing.T) {
	st := &memStore{records: seed()}
	m := NewModel(st, fixedNow)
	m.Update(key("d"))
	m.Update(key("q"))
	if _, cmd := m.Update(key("d")); cmd == nil {
		t.Fatalf("expected quit after discard")
	}
	if len(st.saved) != 0 {
		t.Fatalf("discard must not write")
	}
}

func TestQuitCleanSessionQuitsImmediately(t *testing.T) {
	m := NewModel(&memStore{records: seed()}, fixedNow)
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatalf("expected quit")
	}
}

func TestAddRowThroughForm(t *testing.T) {
	st := &memStore{records: seed()}
	m := NewModel(st, fixedNow)
	m.Update(key("a"))
	if m.mode != modeForm || m.editIndex != -1 {
		t.Fatalf("expected add form")
	}
	if got := m.inputs[fieldDate].Value(); got != "2024/03/03" {
		t.Fatalf("expected today's date, got %q", got)
	}
	if got := m.inputs[fieldDeck].Value(); got != "ユベル" {
		t.Fatalf("expected deck from last record, got %q", got)
	}
	m.inputs[fieldCoin].SetValue("表")
	m.inputs[fieldTurn].SetValue("second")
	m.inputs[fieldResult].SetValue("win")
	m.inputs[fieldRate].SetValue("１５２０")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeTable {
		t.Fatalf("expected form to close, error: %q", m.formError)
	}
	recs := m.Records()
	if len(recs) != 3 || !m.Dirty() {
		t.Fatalf("expected appended dirty row, got %+v", recs)
	}
	added := recs[2]
	if added.Coin != model.CoinHeads || added.Rate != 1520 || added.OpponentDeck != model.DefaultOpponentDeck || added.Rank != "G2" {
		t.Fatalf("unexpected added record: %+v", added)
	}
}

func TestFormRejectsMissingField(t *testing.T) {
	m := NewModel(&memStore{records: seed()}, fixedNow)
	m.Update(key("e"))
	m.inputs[fieldDeck].SetValue("")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeForm || !strings.Contains(m.formError, "deck") {
		t.Fatalf("expected deck validation error, got %q", m.formError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeTable || m.Dirty() {
		t.Fatalf("cancel should leave the session unchanged")
	}
}

func TestEditUpdatesSelectedRow(t *testing.T) {
	m := NewModel(&memStore{records: seed()}, fixedNow)
	m.Update(key("e"))
	m.inputs[fieldMemo].SetValue("misplay")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Records()[0].Memo; got != "misplay" {
		t.Fatalf("expected memo to be updated, got %q", got)
	}
	if len(m.Records()) != 2 {
		t.Fatalf("edit must not add rows")
	}
}

func TestEditKeepsMultilineMemo(t *testing.T) {
	records := seed()
	records[0].Memo = "line one\nline two"
	m := NewModel(&memStore{records: records}, fixedNow)
	m.Update(key("e"))
	m.inputs[fieldRate].SetValue("1510")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := m.Records()[0]
	if got.Memo != "line one\nline two" {
		t.Fatalf("expected memo kept, got %q", got.Memo)
	}
	if got.Rate != 1510 {
		t.Fatalf("expected rate updated, got %d", got.Rate)
	}

	m.Update(key("e"))
	m.inputs[fieldMemo].SetValue("rewritten")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Records()[0].Memo; got != "rewritten" {
		t.Fatalf("expected memo replaced, got %q", got)
	}
}

func TestMissingFileStartsEmpty(t *testing.T) {
	st := &memStore{loadErr: record.ErrStoreUnavailable}
	m := NewModel(st, fixedNow)
	if len(m.Records()) != 0 || m.errMsg != "" || m.notice == "" {
		t.Fatalf("unexpected state: %+v", m)
	}
}

func TestCorruptFileIsNeverOverwritten(t *testing.T) {
	st := &memStore{loadErr: &record.CorruptError{Line: 3, Reason: "bad row"}}
	m := NewModel(st, fixedNow)
	if m.errMsg == "" {
		t.Fatalf("expected load error")
	}
	m.Update(key("s"))
	if len(st.saved) != 0 {
		t.Fatalf("corrupt file must not be rewritten")
	}
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	st := &memStore{records: seed(), saveErr: errors.New("read-only")}
	m := NewModel(st, fixedNow)
	m.Update(key("d"))
	m.Update(key("s"))
	if !m.Dirty() || !strings.Contains(m.errMsg, "read-only") {
		t.Fatalf("expected dirty session with error, got dirty=%v err=%q", m.Dirty(), m.errMsg)
	}
}
