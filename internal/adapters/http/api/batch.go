package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/Diego-de-Souza/service-generate-content/internal/app"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/model"
	"github.com/Diego-de-Souza/service-generate-content/internal/domain/types"
)

// Window defaults applied when a request omits them.
const (
	defaultHoursAgo  = 24
	defaultDaysAhead = 30
)

// BatchHandler serves the three batch generation endpoints.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// Request bodies use pointer fields so an omitted value can fall back to the
// configured default while an explicit zero stays an explicit zero.
type articlesRequest struct {
	Category    string   `json:"category"`
	Persona     string   `json:"persona"`
	Limit       *int     `json:"limit"`
	MinScore    *float64 `json:"min_score"`
	ExcludeURLs []string `json:"exclude_urls"`
}

type newsRequest struct {
	Limit    *int     `json:"limit"`
	HoursAgo *int     `json:"hours_ago"`
	MinScore *float64 `json:"min_score"`
}

type eventsRequest struct {
	Limit          *int   `json:"limit"`
	DaysAhead      *int   `json:"days_ahead"`
	LocationFilter string `json:"location_filter"`
}

type articleItem struct {
	Category        string   `json:"category"`
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	Text            string   `json:"text"`
	Summary         string   `json:"summary"`
	Keywords        []string `json:"keyWords"`
	MetaDescription string   `json:"meta_description"`
	OriginalURL     string   `json:"original_url"`
	Source          string   `json:"source"`
}

type newsItem struct {
	Title          string    `json:"title"`
	DisclosureDate time.Time `json:"disclosure_date"`
}

type eventItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	DateEvent   time.Time `json:"date_event"`
	URLEvent    string    `json:"url_event"`
}

type articlesResponse struct {
	TotalProcessed int            `json:"total_processed"`
	Articles       []articleItem  `json:"articles"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       types.Metadata `json:"metadata"`
}

type newsResponse struct {
	TotalProcessed int            `json:"total_processed"`
	News           []newsItem     `json:"news"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       types.Metadata `json:"metadata"`
}

type eventsResponse struct {
	TotalProcessed int            `json:"total_processed"`
	Events         []eventItem    `json:"events"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       types.Metadata `json:"metadata"`
}

// HandleArticles handles POST /batch/articles requests.
func (h *BatchHandler) HandleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var body articlesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}

	limit, minScore := h.deps.Defaults(types.KindArticles)
	req := types.BatchRequest{
		Kind:        types.KindArticles,
		Category:    body.Category,
		Persona:     body.Persona,
		Limit:       resolveLimit(body.Limit, limit, h.deps.MaxLimit()),
		MinScore:    resolveFloat(body.MinScore, minScore),
		ExcludeURLs: body.ExcludeURLs,
	}

	result, ok := h.run(w, r, req)
	if !ok {
		return
	}

	articles := make([]articleItem, 0, len(result.Items))
	for _, item := range result.Items {
		articles = append(articles, articleItem{
			Category:        item.Category,
			Title:           item.Title,
			Slug:            item.Slug,
			Description:     item.Description,
			Text:            item.Text,
			Summary:         item.Summary,
			Keywords:        item.Keywords,
			MetaDescription: item.MetaDescription,
			OriginalURL:     item.URL,
			Source:          sourceName(item),
		})
	}
	writeJSON(w, http.StatusOK, articlesResponse{
		TotalProcessed: len(articles),
		Articles:       articles,
		ProcessingTime: result.Elapsed.Seconds(),
		Metadata:       result.Metadata,
	})
}

// HandleNews handles POST /batch/news requests.
func (h *BatchHandler) HandleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var body newsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}

	limit, minScore := h.deps.Defaults(types.KindNews)
	req := types.BatchRequest{
		Kind:     types.KindNews,
		Limit:    resolveLimit(body.Limit, limit, h.deps.MaxLimit()),
		MinScore: resolveFloat(body.MinScore, minScore),
		HoursAgo: resolveInt(body.HoursAgo, defaultHoursAgo),
	}

	result, ok := h.run(w, r, req)
	if !ok {
		return
	}

	news := make([]newsItem, 0, len(result.Items))
	for _, item := range result.Items {
		news = append(news, newsItem{
			Title:          item.Title,
			DisclosureDate: item.PublishedAt,
		})
	}
	writeJSON(w, http.StatusOK, newsResponse{
		TotalProcessed: len(news),
		News:           news,
		ProcessingTime: result.Elapsed.Seconds(),
		Metadata:       result.Metadata,
	})
}

// HandleEvents handles POST /batch/events requests.
func (h *BatchHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var body eventsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}

	limit, minScore := h.deps.Defaults(types.KindEvents)
	req := types.BatchRequest{
		Kind:           types.KindEvents,
		Limit:          resolveLimit(body.Limit, limit, h.deps.MaxLimit()),
		MinScore:       minScore,
		DaysAhead:      resolveInt(body.DaysAhead, defaultDaysAhead),
		LocationFilter: body.LocationFilter,
	}

	result, ok := h.run(w, r, req)
	if !ok {
		return
	}

	events := make([]eventItem, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, eventItem{
			Title:       item.Title,
			Description: item.Description,
			Location:    item.Location,
			DateEvent:   item.EventAt,
			URLEvent:    item.URL,
		})
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		TotalProcessed: len(events),
		Events:         events,
		ProcessingTime: result.Elapsed.Seconds(),
		Metadata:       result.Metadata,
	})
}

// run validates, executes and maps pipeline errors to HTTP statuses. It
// reports false when a response has already been written.
func (h *BatchHandler) run(w http.ResponseWriter, r *http.Request, req types.BatchRequest) (types.Result, bool) {
	if err := req.Validate(); err != nil {
		var fe *types.FieldError
		if errors.As(err, &fe) {
			writeFieldError(w, fe)
		} else {
			writeError(w, http.StatusBadRequest, "bad_request", err)
		}
		return types.Result{}, false
	}

	result, err := h.deps.ProcessBatch(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAIUnavailable), errors.Is(err, service.ErrNotStarted):
			writeError(w, http.StatusServiceUnavailable, "service_unavailable", errors.Join(ErrUnavailable, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return types.Result{}, false
	}
	return result, true
}

// resolveLimit applies the default for an omitted limit and caps explicit
// ones. Negative values pass through so validation can reject them.
func resolveLimit(v *int, def, maxLimit int) int {
	if v == nil {
		return def
	}
	if maxLimit > 0 && *v > maxLimit {
		return maxLimit
	}
	return *v
}

func resolveInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func resolveFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func sourceName(item model.ScoredItem) string {
	if item.Source == nil {
		return ""
	}
	return item.Source.Name
}
