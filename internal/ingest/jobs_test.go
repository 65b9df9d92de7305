package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdintel-engine/internal/domain"
)

func TestParseSkipsBadRecords(t *testing.T) {
	jobs, report, err := Parse([]byte(`[
		{"job_id": "j1", "title": "Engineer", "company": "Northrop", "description": "GBSD work"},
		{"title": "No ID", "description": "dropped"},
		{"job_id": "j3", "title": "", "description": ""},
		{"job_id": "j1", "title": "Engineer again", "description": "dup"}
	]`))
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].ID)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 3, report.Skipped)

	require.Len(t, report.Errors, 3)
	assert.Equal(t, "missing job_id", report.Errors[0].Reason)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.Equal(t, "title and description both empty", report.Errors[1].Reason)
	assert.Equal(t, "duplicate job_id", report.Errors[2].Reason)
	assert.Equal(t, "j1", report.Errors[2].JobID)
}

func TestParseMalformedJSONIsFatal(t *testing.T) {
	_, _, err := Parse([]byte(`{"not": "an array"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode jobs")
}

func TestParseStripsHTMLAndWhitespace(t *testing.T) {
	jobs, _, err := Parse([]byte(`[
		{"job_id": "j1", "title": "  Senior   Engineer ", "description": "<p>GBSD <b>sustainment</b></p>"}
	]`))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Senior Engineer", jobs[0].Title)
	assert.Equal(t, "GBSD sustainment", jobs[0].Description)
}

func TestParseNullLocation(t *testing.T) {
	jobs, _, err := Parse([]byte(`[
		{"job_id": "j1", "title": "Engineer", "location": null, "description": "x"},
		{"job_id": "j2", "title": "Engineer", "location": {"city": "Roy", "state": "UT"}, "description": "x"}
	]`))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Nil(t, jobs[0].Location)
	require.NotNil(t, jobs[1].Location)
	assert.Equal(t, "Roy", jobs[1].Location.City)
	assert.Equal(t, "UT", jobs[1].Location.State)
}

func TestParseClearanceField(t *testing.T) {
	cases := []struct {
		field string
		want  domain.Clearance
	}{
		{"TS/SCI", domain.ClearanceTSSCI},
		{"top secret/sci", domain.ClearanceTSSCI},
		{"TS", domain.ClearanceTS},
		{"Top Secret", domain.ClearanceTS},
		{"secret", domain.ClearanceSecret},
		{"none", domain.ClearanceNone},
	}
	for _, c := range cases {
		got := parseClearance(c.field, "")
		assert.Equal(t, c.want, got, "field %q", c.field)
	}
}

func TestClearanceFromText(t *testing.T) {
	assert.Equal(t, domain.ClearanceTSSCI, clearanceFromText("requires active TS/SCI clearance"))
	assert.Equal(t, domain.ClearanceTS, clearanceFromText("must hold a Top Secret clearance"))
	// "top secret" must win over the "secret" substring it contains
	assert.Equal(t, domain.ClearanceSecret, clearanceFromText("Secret clearance required"))
	assert.Equal(t, domain.ClearanceUnknown, clearanceFromText("no clearance mentioned"))
}

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2026-01-15", "01/15/2026", "January 15, 2026", "Jan 15, 2026"} {
		assert.Equal(t, want, parseDate(s), "input %q", s)
	}
	assert.True(t, parseDate("").IsZero())
	assert.True(t, parseDate("not a date").IsZero())
	assert.Equal(t,
		time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		parseDate("2026-01-15T09:30:00Z"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"job_id": "j1", "title": "Engineer", "description": "x"}]`), 0o644))

	jobs, report, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, report.Loaded)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
