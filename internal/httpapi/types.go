package httpapi

type AnalysisStatus struct {
	LastRunAt  string `json:"last_run_at"`
	LastOkAt   string `json:"last_ok_at"`
	LastRunID  string `json:"last_run_id"`
	LastError  string `json:"last_error"`
	LastMapped int    `json:"last_mapped"`
	Running    bool   `json:"running"`
}
