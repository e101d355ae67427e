// Package record persists match records in a CSV file.
//
// Files are written as UTF-8 without a byte order mark. Files that are not
// valid UTF-8 are read as Shift_JIS (Windows code page 932), as older record
// files were, and are converted to UTF-8 on the next write.
package record

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
)

// FileName is the record file name inside the save location.
const FileName = "master_duel_records.csv"

// Header lists the record fields in file order.
var Header = []string{"date", "deck", "coin", "turn", "opponent_deck", "result", "rank", "rate", "memo"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	// ErrStoreUnavailable means the record file does not exist yet.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrStoreCorrupt means a row could not be parsed into a record.
	ErrStoreCorrupt = errors.New("record store corrupt")
	// ErrWriteFailed means the record file could not be written.
	ErrWriteFailed = errors.New("record store write failed")
)

// CorruptError locates an unparseable row.
type CorruptError struct {
	Line   int
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap lets errors.Is match ErrStoreCorrupt.
func (e *CorruptError) Unwrap() error {
	return ErrStoreCorrupt
}

// WriteError carries the filesystem cause of a failed write.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Is lets errors.Is match ErrWriteFailed.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}

// Unwrap exposes the underlying cause.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store reads and writes the record file. It holds no cached records.
type Store struct {
	path string
}

// Open returns a store rooted at dir. The file is created lazily.
func Open(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the record file path.
func (s *Store) Path() string {
	return s.path
}

// LoadAll parses every record in file order.
func (s *Store) LoadAll() ([]model.Record, error) {
	data, _, err := s.readFile()
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// Last returns the final record, if any.
func (s *Store) Last() (model.Record, bool, error) {
	records, err := s.LoadAll()
	if err != nil {
		return model.Record{}, false, err
	}
	if len(records) == 0 {
		return model.Record{}, false, nil
	}
	return records[len(records)-1], true, nil
}

// Append adds rec as the last row, writing the header when the file is new.
// Legacy-encoded files, files missing a final newline and files whose header
// differs from Header are rewritten in canonical form.
func (s *Store) Append(rec model.Record) error {
	data, legacy, err := s.readFile()
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		return s.appendRow(rec, true)
	case err != nil:
		return err
	case len(bytes.TrimSpace(data)) == 0:
		return s.RewriteAll([]model.Record{rec})
	case legacy || !bytes.HasSuffix(data, []byte("\n")) || !canonicalHeader(data):
		records, err := s.LoadAll()
		if err != nil {
			return err
		}
		return s.RewriteAll(append(records, rec))
	}
	return s.appendRow(rec, false)
}

// RewriteAll replaces the file contents with records in the given order. The
// new content is written to a temporary file and renamed over the old one.
func (s *Store) RewriteAll(records []model.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: "create record directory", Err: err}
	}
	tmpFile, err := os.CreateTemp(dir, "records-*.csv")
	if err != nil {
		return &WriteError{Op: "create temp record file", Err: err}
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	mode := os.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmpFile.Chmod(mode); err != nil {
		return &WriteError{Op: "set record file mode", Err: err}
	}

	writer := bufio.NewWriter(tmpFile)
	if err := encode(writer, records, true); err != nil {
		return &WriteError{Op: "write records", Err: err}
	}
	if err := writer.Flush(); err != nil {
		return &WriteError{Op: "flush records", Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &WriteError{Op: "sync records", Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &WriteError{Op: "close records", Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &WriteError{Op: "replace record file", Err: err}
	}
	return nil
}

// Remove deletes the record file.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return ErrStoreUnavailable
		}
		return &WriteError{Op: "remove record file", Err: err}
	}
	return nil
}

func (s *Store) appendRow(rec model.Record, withHeader bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &WriteError{Op: "create record directory", Err: err}
	}
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return &WriteError{Op: "open record file", Err: err}
	}
	if err := encode(file, []model.Record{rec}, withHeader); err != nil {
		_ = file.Close()
		return &WriteError{Op: "append record", Err: err}
	}
	if err := file.Close(); err != nil {
		return &WriteError{Op: "close record file", Err: err}
	}
	return nil
}

// readFile returns UTF-8 content and whether it was decoded from Shift_JIS.
func (s *Store) readFile() ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, ErrStoreUnavailable
		}
		return nil, false, fmt.Errorf("failed to read records: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, false, nil
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return nil, false, &CorruptError{Line: 0, Reason: fmt.Sprintf("unsupported encoding: %v", err)}
	}
	return decoded, true, nil
}

// canonicalHeader reports whether the first row matches Header exactly.
func canonicalHeader(data []byte) bool {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return false
	}
	return slices.Equal(header, Header)
}

func decode(data []byte) ([]model.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, &CorruptError{Line: 1, Reason: err.Error()}
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return nil, &CorruptError{Line: 1, Reason: fmt.Sprintf("missing column %q", name)}
		}
	}

	records := []model.Record{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &CorruptError{Line: perr.StartLine, Reason: perr.Err.Error()}
			}
			return nil, &CorruptError{Reason: err.Error()}
		}
		line, _ := reader.FieldPos(0)
		if len(row) != len(header) {
			return nil, &CorruptError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row))}
		}
		rec, err := parseRow(row, columns)
		if err != nil {
			return nil, &CorruptError{Line: line, Reason: err.Error()}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, columns map[string]int) (model.Record, error) {
	field := func(name string) string {
		return row[columns[name]]
	}
	coin, ok := model.ParseCoin(field("coin"))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown coin %q", field("coin"))
	}
	turn, ok := model.ParseTurn(field("turn"))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown turn %q", field("turn"))
	}
	result, ok := model.ParseResult(field("result"))
	if !ok {
		return model.Record{}, fmt.Errorf("unknown result %q", field("result"))
	}
	return model.Record{
		Date:         field("date"),
		Deck:         field("deck"),
		Coin:         coin,
		Turn:         turn,
		OpponentDeck: field("opponent_deck"),
		Result:       result,
		Rank:         model.Rank(field("rank")),
		Rate:         model.ParseRate(field("rate")),
		Memo:         field("memo"),
	}, nil
}

func encode(w io.Writer, records []model.Record, withHeader bool) error {
	writer := csv.NewWriter(w)
	if withHeader {
		if err := writer.Write(Header); err != nil {
			return err
		}
	}
	for _, rec := range records {
		if err := writer.Write(formatRow(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatRow(rec model.Record) []string {
	return []string{
		rec.Date,
		rec.Deck,
		string(rec.Coin),
		string(rec.Turn),
		rec.OpponentDeck,
		string(rec.Result),
		string(rec.Rank),
		strconv.Itoa(rec.Rate),
		rec.Memo,
	}
}
