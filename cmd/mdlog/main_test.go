package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/archive"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvSettings, filepath.Join(dir, "settings.toml"))
	t.Setenv(config.EnvSaveLocation, filepath.Join(dir, "records"))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func loadRecords(t *testing.T, dir string) []model.Record {
	t.Helper()
	records, err := record.Open(filepath.Join(dir, "records")).LoadAll()
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	return records
}

func TestAddPrefillsFromLastRecord(t *testing.T) {
	dir := setupEnv(t)
	if _, err := runCLI(t, "add", "--date", "2024/01/15", "--deck", "ユベル", "--coin", "heads",
		"--turn", "first", "--result", "win", "--rank", "G3", "--rate", "1500"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := runCLI(t, "add", "--date", "2024/01/20", "--coin", "tails", "--turn", "second",
		"--result", "loss", "--rank-down"); err != nil {
		t.Fatalf("add: %v", err)
	}
	records := loadRecords(t, dir)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	second := records[1]
	if second.Deck != "ユベル" || second.Rank != "G4" || second.Rate != 1500 || second.OpponentDeck != model.DefaultOpponentDeck {
		t.Fatalf("unexpected prefilled record: %+v", second)
	}
}

func TestAddRejectsMissingField(t *testing.T) {
	dir := setupEnv(t)
	_, err := runCLI(t, "add", "--date", "2024/01/15", "--deck", "ユベル", "--turn", "first", "--result", "win")
	if !errors.Is(err, model.ErrValidationFailed) || !strings.Contains(err.Error(), "coin") {
		t.Fatalf("expected coin validation error, got %v", err)
	}
	if _, err := record.Open(filepath.Join(dir, "records")).LoadAll(); !errors.Is(err, record.ErrStoreUnavailable) {
		t.Fatalf("expected no record file, got %v", err)
	}
}

func TestListEditDelete(t *testing.T) {
	dir := setupEnv(t)
	for _, date := range []string{"2023/12/31", "2024/01/05", "2024/01/06"} {
		if _, err := runCLI(t, "add", "--date", date, "--deck", "Tenpai", "--coin", "heads",
			"--turn", "first", "--result", "win"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	out, err := runCLI(t, "list", "--month", "2024/01")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.Contains(out, "2023/12/31") || !strings.Contains(out, "2024/01/06") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(strings.TrimSpace(lines[1]), "2 ") {
		t.Fatalf("expected file row numbers in list, got:\n%s", out)
	}

	if _, err := runCLI(t, "edit", "2", "--opponent", "Snake-Eye", "--result", "loss"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	records := loadRecords(t, dir)
	if records[1].OpponentDeck != "Snake-Eye" || records[1].Result != model.ResultLoss || records[1].Deck != "Tenpai" {
		t.Fatalf("unexpected edited record: %+v", records[1])
	}

	if _, err := runCLI(t, "delete", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records = loadRecords(t, dir)
	if len(records) != 2 || records[0].Date != "2024/01/05" {
		t.Fatalf("unexpected records after delete: %+v", records)
	}
	if _, err := runCLI(t, "delete", "9"); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestSummaryAndEnv(t *testing.T) {
	setupEnv(t)
	args := [][]string{
		{"add", "--date", "2024/01/15", "--deck", "D", "--coin", "heads", "--turn", "first", "--result", "win", "--opponent", "A"},
		{"add", "--date", "2024/01/20", "--deck", "D", "--coin", "tails", "--turn", "second", "--result", "loss", "--opponent", "B"},
		{"add", "--date", "2024/02/01", "--deck", "D", "--coin", "heads", "--turn", "second", "--result", "win", "--opponent", "A"},
	}
	for _, a := range args {
		if _, err := runCLI(t, a...); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	out, err := runCLI(t, "summary", "--month", "2024/01")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "Match summary 2024/01") || !strings.Contains(out, "50.0%") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	out, err = runCLI(t, "env", "--month", "2024/01", "--type", "pie")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Fatalf("unexpected distribution:\n%s", out)
	}
	if _, err := runCLI(t, "env", "--type", "donut"); err == nil {
		t.Fatalf("expected invalid type error")
	}
	if _, err := runCLI(t, "summary", "--month", "2999/01"); err == nil {
		t.Fatalf("expected future month to be rejected")
	}
}

func TestSettingsCommandsKeepEnvOutOfFile(t *testing.T) {
	dir := setupEnv(t)
	if _, err := runCLI(t, "settings", "set-graph", "--graph", "bar"); err != nil {
		t.Fatalf("set-graph: %v", err)
	}
	if _, err := runCLI(t, "settings", "set-startup", "rate-graph"); err != nil {
		t.Fatalf("set-startup: %v", err)
	}
	stored, err := config.ReadSettings(filepath.Join(dir, "settings.toml"))
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	if stored.GraphType != config.GraphBar || len(stored.StartupWindow) != 1 {
		t.Fatalf("unexpected stored settings: %+v", stored)
	}
	if stored.SaveLocation == filepath.Join(dir, "records") {
		t.Fatalf("env save location leaked into settings file")
	}
	if _, err := runCLI(t, "settings", "set-startup", "calendar"); err == nil {
		t.Fatalf("expected unknown view error")
	}
}

func TestResetAndExport(t *testing.T) {
	dir := setupEnv(t)
	if _, err := runCLI(t, "add", "--date", "2024/01/15", "--deck", "D", "--coin", "heads",
		"--turn", "first", "--result", "win"); err != nil {
		t.Fatalf("add: %v", err)
	}
	out, err := runCLI(t, "export", "--db", filepath.Join(dir, "out.db"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 1 matches") || !strings.Contains(out, "2024/01") {
		t.Fatalf("unexpected export output:\n%s", out)
	}
	arc, err := archive.Open(filepath.Join(dir, "out.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	matches, err := arc.Matches(context.Background())
	_ = arc.Close()
	if err != nil || len(matches) != 1 || matches[0].Deck != "D" {
		t.Fatalf("unexpected archived matches: %+v err=%v", matches, err)
	}
	if _, err := runCLI(t, "reset", "--yes"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := record.Open(filepath.Join(dir, "records")).LoadAll(); !errors.Is(err, record.ErrStoreUnavailable) {
		t.Fatalf("expected record file to be gone, got %v", err)
	}
}
