package httpapi

import "net/http"

// NewMux wires the API surface. Callers wrap it with Chain(...) middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	rh := RunsHandler{DB: d.DB}
	mux.HandleFunc("/runs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.List,
	}))
	mux.HandleFunc("/runs/latest", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Latest,
	}))

	mh := MappingsHandler{DB: d.DB}
	mux.HandleFunc("/mappings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: mh.List,
	}))

	oh := OrgsHandler{DB: d.DB}
	mux.HandleFunc("/orgs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.List,
	}))

	ah := AnalyzeHandler{
		Status:      d.AnalysisStatus,
		RunAnalysis: d.RunAnalysis,
		Limiter:     d.AnalyzeLimiter,
	}
	mux.HandleFunc("/analyze/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.GetStatus,
	}))
	mux.HandleFunc("/analyze", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Run,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
