package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/textutil"
)

// RecordError describes one skipped record. Validation problems never abort
// a batch; one bad record must not block the rest.
type RecordError struct {
	Index  int    `json:"index"`
	JobID  string `json:"job_id,omitempty"`
	Reason string `json:"reason"`
}

// Report summarizes a load: what made it in and what was dropped.
type Report struct {
	Loaded  int           `json:"loaded"`
	Skipped int           `json:"skipped"`
	Errors  []RecordError `json:"errors,omitempty"`
}

// rawJob tolerates the loose upstream shape: location may be null, the
// timestamp is a string in a handful of formats.
type rawJob struct {
	JobID       string           `json:"job_id"`
	Title       string           `json:"title"`
	Company     string           `json:"company"`
	Location    *domain.Location `json:"location"`
	Clearance   string           `json:"clearance_level"`
	Description string           `json:"description"`
	PostedDate  string           `json:"posted_date"`
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// LoadFile reads a normalized-jobs JSON array. Malformed JSON is an error;
// malformed records are skipped into the report.
func LoadFile(path string) ([]domain.JobRecord, Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read jobs: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates the batch.
func Parse(b []byte) ([]domain.JobRecord, Report, error) {
	var raws []rawJob
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, Report{}, fmt.Errorf("decode jobs: %w", err)
	}

	var report Report
	jobs := make([]domain.JobRecord, 0, len(raws))
	seen := map[string]bool{}

	for i, r := range raws {
		job, reason := normalize(r)
		if reason == "" && seen[job.ID] {
			reason = "duplicate job_id"
		}
		if reason != "" {
			report.Skipped++
			report.Errors = append(report.Errors, RecordError{Index: i, JobID: r.JobID, Reason: reason})
			continue
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
		report.Loaded++
	}
	return jobs, report, nil
}

func normalize(r rawJob) (domain.JobRecord, string) {
	id := strings.TrimSpace(r.JobID)
	if id == "" {
		return domain.JobRecord{}, "missing job_id"
	}

	title := textutil.CleanText(r.Title)
	desc := textutil.StripHTML(r.Description)
	if title == "" && desc == "" {
		return domain.JobRecord{}, "title and description both empty"
	}

	job := domain.JobRecord{
		ID:          id,
		Title:       title,
		Company:     textutil.CleanText(r.Company),
		Location:    r.Location,
		Description: desc,
		Clearance:   parseClearance(r.Clearance, desc),
		PostedDate:  parseDate(r.PostedDate),
	}
	return job, ""
}

// parseClearance trusts the normalizer's field when present, otherwise
// falls back to scanning the description.
func parseClearance(field, desc string) domain.Clearance {
	switch strings.ToUpper(strings.TrimSpace(field)) {
	case "TS/SCI", "TOP SECRET/SCI":
		return domain.ClearanceTSSCI
	case "TS", "TOP SECRET":
		return domain.ClearanceTS
	case "SECRET":
		return domain.ClearanceSecret
	case "NONE":
		return domain.ClearanceNone
	}
	return clearanceFromText(desc)
}

func clearanceFromText(desc string) domain.Clearance {
	up := strings.ToUpper(desc)
	switch {
	case strings.Contains(up, "TS/SCI") || strings.Contains(up, "TOP SECRET/SCI") || strings.Contains(up, "TOP SECRET SCI"):
		return domain.ClearanceTSSCI
	case strings.Contains(up, "TOP SECRET"):
		return domain.ClearanceTS
	case strings.Contains(up, "SECRET"):
		return domain.ClearanceSecret
	}
	return domain.ClearanceUnknown
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
