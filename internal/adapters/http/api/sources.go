package api

import (
	"net/http"

	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
)

// SourcesHandler exposes the configured source catalog for inspection.
type SourcesHandler struct {
	deps Dependencies
}

// NewSourcesHandler creates a new sources handler.
func NewSourcesHandler(deps Dependencies) *SourcesHandler {
	return &SourcesHandler{deps: deps}
}

type sourceEntry struct {
	Name              string `json:"name"`
	Domain            string `json:"domain"`
	URL               string `json:"url"`
	Mechanism         string `json:"mechanism"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	Priority          int    `json:"priority"`
	Active            bool   `json:"active"`
}

type sourcesResponse struct {
	Total   int                      `json:"total"`
	Sources map[string][]sourceEntry `json:"sources"`
}

// HandleSources handles GET /batch/sources requests.
func (h *SourcesHandler) HandleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	catalog := h.deps.Catalog()
	out := make(map[string][]sourceEntry, len(catalog))
	total := 0
	for category, sources := range catalog {
		entries := make([]sourceEntry, 0, len(sources))
		for _, src := range sources {
			entries = append(entries, toEntry(src))
		}
		out[category] = entries
		total += len(entries)
	}
	writeJSON(w, http.StatusOK, sourcesResponse{Total: total, Sources: out})
}

func toEntry(src model.Source) sourceEntry {
	return sourceEntry{
		Name:              src.Name,
		Domain:            src.Domain,
		URL:               src.URL,
		Mechanism:         string(src.Mechanism),
		RequestsPerMinute: src.RequestsPerMinute,
		Priority:          src.Priority,
		Active:            src.Active,
	}
}
