package domain

import "time"

// Clearance is the security clearance level extracted by the upstream normalizer.
type Clearance string

const (
	ClearanceNone    Clearance = "None"
	ClearanceSecret  Clearance = "Secret"
	ClearanceTS      Clearance = "TS"
	ClearanceTSSCI   Clearance = "TS/SCI"
	ClearanceUnknown Clearance = "Unknown"
)

// Location is a parsed city/state pair. Nil on a JobRecord means unparsed.
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

func (l Location) String() string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + ", " + l.State
	case l.City != "":
		return l.City
	default:
		return l.State
	}
}

// JobRecord is one scraped, normalized posting. Immutable once created;
// enrichment produces new records, never edits in place.
type JobRecord struct {
	ID          string    `json:"job_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    *Location `json:"location"`
	Clearance   Clearance `json:"clearance_level"`
	Description string    `json:"description"`
	PostedDate  time.Time `json:"posted_date"`
}
