package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone-scrubber/config"
	"phone-scrubber/models"
	"phone-scrubber/services"
	"phone-scrubber/storage"
	"phone-scrubber/utils"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func testConfig(out string) *config.Config {
	return &config.Config{
		ListCategoryColumn: "Log Type",
		ListPhoneColumn:    "Phone",
		PhoneColumnHints:   []string{"mobile", "phone", "number", "tel", "contact", "ph"},
		MaxConcurrency:     2,
		MaxRetries:         1,
		OutputDir:          out,
		RemovedFolder:      "removed",
		ScrubbedFolder:     "scrubbed",
		ZipOutput:          true,
		DropDuplicates:     true,
		CapturePolicy:      "row",
		CSVEncodings:       []string{"utf-8", "windows-1252"},
	}
}

func TestRunScrubWritesAllOutputs(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	list := writeFile(t, in, "leads.csv",
		"Log Type,Phone\nCall,(555) 111-2222\nCall,5551112222\nText,5559998888\n")
	calls := writeFile(t, in, "calls.csv",
		"Name,Mobile\nA,15551112222\nB,5559998888\n")

	var stdout bytes.Buffer
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	err := runScrub(context.Background(), testConfig(out), scrubRequest{
		ListPath:   list,
		LogPaths:   []string{calls},
		Conditions: []string{"call:2"},
		Now:        now,
	}, utils.NewNopLogger(), &stdout)
	require.NoError(t, err)

	for _, rel := range []string{
		"removed/Updated_leads_20240309.csv",
		"removed/Removed_From_leads_20240309.csv",
		"removed/Removed_Records_calls_20240309.csv",
		"removed/Removed_Numbers_leads_20240309.csv",
		"scrubbed/Scrubbed_calls_20240309.csv",
		"all_processed_files_20240309.zip",
	} {
		assert.FileExists(t, filepath.Join(out, rel))
	}

	scrubbed, err := os.ReadFile(filepath.Join(out, "scrubbed", "Scrubbed_calls_20240309.csv"))
	require.NoError(t, err)
	assert.Equal(t, "name,mobile\nA,\nB,5559998888\n", string(scrubbed))

	updated, err := os.ReadFile(filepath.Join(out, "removed", "Updated_leads_20240309.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Log Type,Phone,occurrence\nText,5559998888,1\n", string(updated))

	numbers, err := os.ReadFile(filepath.Join(out, "removed", "Removed_Numbers_leads_20240309.csv"))
	require.NoError(t, err)
	assert.Equal(t, "phone\n5551112222\n", string(numbers))

	zr, err := zip.OpenReader(filepath.Join(out, "all_processed_files_20240309.zip"))
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 4)

	assert.Contains(t, stdout.String(), "PHONE SCRUB SUMMARY")
}

func TestRunScrubUnreadableLogPassesThrough(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	list := writeFile(t, in, "leads.csv", "Log Type,Phone\nCall,5551112222\n")
	cfg := testConfig(out)
	cfg.ZipOutput = false

	var stdout bytes.Buffer
	err := runScrub(context.Background(), cfg, scrubRequest{
		ListPath:   list,
		LogPaths:   []string{filepath.Join(in, "missing.csv")},
		Conditions: []string{"call:1"},
		Now:        time.Now(),
	}, utils.NewNopLogger(), &stdout)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "FAILED")

	zips, err := filepath.Glob(filepath.Join(out, "*.zip"))
	require.NoError(t, err)
	assert.Empty(t, zips)
}

func TestRunScrubRejectsBadCondition(t *testing.T) {
	err := runScrub(context.Background(), testConfig(t.TempDir()), scrubRequest{
		ListPath:   "unused.csv",
		Conditions: []string{"call:zero"},
		Now:        time.Now(),
	}, utils.NewNopLogger(), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunScrubMissingListColumn(t *testing.T) {
	in := t.TempDir()
	list := writeFile(t, in, "leads.csv", "Type,Number\nCall,5551112222\n")

	err := runScrub(context.Background(), testConfig(t.TempDir()), scrubRequest{
		ListPath:   list,
		Conditions: []string{"call:1"},
		Now:        time.Now(),
	}, utils.NewNopLogger(), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Log Type")
}

func TestColumnsCommand(t *testing.T) {
	in := t.TempDir()
	a := writeFile(t, in, "a.csv", "Name,Mobile Number,Home Tel\nx,1,2\n")
	b := writeFile(t, in, "b.csv", "Name,City\nx,y\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"columns", a, b})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, a+": Mobile Number, Home Tel", lines[0])
	assert.Equal(t, b+": (none)", lines[1])
}

func TestNewClassifierPrefersPattern(t *testing.T) {
	cfg := testConfig(t.TempDir())

	c, err := newClassifier(cfg)
	require.NoError(t, err)
	assert.True(t, c.IsPhoneColumn("Contact"))

	cfg.PhoneColumnPattern = `^cell$`
	c, err = newClassifier(cfg)
	require.NoError(t, err)
	assert.True(t, c.IsPhoneColumn("CELL"))
	assert.False(t, c.IsPhoneColumn("Contact"))

	cfg.PhoneColumnPattern = `(`
	_, err = newClassifier(cfg)
	assert.Error(t, err)
}

func TestRunScrubRequiresCondition(t *testing.T) {
	err := runScrub(context.Background(), testConfig(t.TempDir()), scrubRequest{
		ListPath: "unused.csv",
		Now:      time.Now(),
	}, utils.NewNopLogger(), &bytes.Buffer{})

	var condErr *services.ConditionError
	require.ErrorAs(t, err, &condErr)
	assert.Contains(t, err.Error(), "at least one condition")
}

func TestScrubCommandRequiresConditionFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"scrub", "--list", "leads.csv"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition")
}

type fakeRecorder struct {
	listName string
	runID    string
	closed   bool
}

func (f *fakeRecorder) RecordRun(_ context.Context, listName string, r *models.RunResult) error {
	f.listName = listName
	f.runID = r.RunID
	return nil
}

func (f *fakeRecorder) Close() error {
	f.closed = true
	return nil
}

func TestRunScrubRecordsRunWhenPostgresEnabled(t *testing.T) {
	rec := &fakeRecorder{}
	var gotDSN string
	orig := newRunRecorder
	newRunRecorder = func(dsn string) (storage.RunRecorder, error) {
		gotDSN = dsn
		return rec, nil
	}
	t.Cleanup(func() { newRunRecorder = orig })

	in := t.TempDir()
	list := writeFile(t, in, "leads.csv", "Log Type,Phone\nCall,5551112222\n")
	cfg := testConfig(t.TempDir())
	cfg.PostgresEnabled = true
	cfg.PostgresHost = "db.internal"

	err := runScrub(context.Background(), cfg, scrubRequest{
		ListPath:   list,
		Conditions: []string{"call:1"},
		Now:        time.Now(),
	}, utils.NewNopLogger(), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, list, rec.listName)
	assert.NotEmpty(t, rec.runID)
	assert.True(t, rec.closed)
	assert.Contains(t, gotDSN, "host=db.internal")
}

func TestRunScrubReportsRecorderFailure(t *testing.T) {
	orig := newRunRecorder
	newRunRecorder = func(string) (storage.RunRecorder, error) {
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { newRunRecorder = orig })

	in := t.TempDir()
	list := writeFile(t, in, "leads.csv", "Log Type,Phone\nCall,5551112222\n")
	cfg := testConfig(t.TempDir())
	cfg.PostgresEnabled = true

	var stdout bytes.Buffer
	err := runScrub(context.Background(), cfg, scrubRequest{
		ListPath:   list,
		Conditions: []string{"call:1"},
		Now:        time.Now(),
	}, utils.NewNopLogger(), &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, stdout.String(), "PHONE SCRUB SUMMARY")
}
