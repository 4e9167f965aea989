// Package server exposes the pipeline over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tvgrid/tvgrid/api"
	"github.com/tvgrid/tvgrid/internal/cache"
	"github.com/tvgrid/tvgrid/internal/config"
	"github.com/tvgrid/tvgrid/internal/embedding"
	"github.com/tvgrid/tvgrid/internal/filter"
	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/service"
	"github.com/tvgrid/tvgrid/internal/state"
	"github.com/tvgrid/tvgrid/internal/store"
)

// Server holds dependencies for the HTTP API.
type Server struct {
	store    store.Store
	state    *state.Container
	pipeline *service.Pipeline
	cfg      *config.Config
	embedder *embedding.Client // nil when VOYAGE_API_KEY is not set
	rds      *cache.Redis      // nil when REDIS_URL is not set
	mux      *http.ServeMux
}

// New creates a Server and registers routes. embedder and rds may be
// nil when the corresponding backends are not configured.
func New(s store.Store, st *state.Container, p *service.Pipeline, cfg *config.Config, embedder *embedding.Client, rds *cache.Redis) *Server {
	srv := &Server{store: s, state: st, pipeline: p, cfg: cfg, embedder: embedder, rds: rds, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	// Channels
	s.mux.HandleFunc("GET /api/channels", s.handleListChannels)
	s.mux.HandleFunc("GET /api/channels/search", s.handleSearchChannels)
	s.mux.HandleFunc("GET /api/channels/{id}", s.handleGetChannel)
	s.mux.HandleFunc("GET /api/channels/{id}/streams", s.handleGetChannelStreams)

	// Taxonomies
	s.mux.HandleFunc("GET /api/countries", s.handleListCountries)
	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
	s.mux.HandleFunc("GET /api/languages", s.handleListLanguages)

	// Favorites and history
	s.mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	s.mux.HandleFunc("PUT /api/favorites/{id}", s.handleAddFavorite)
	s.mux.HandleFunc("DELETE /api/favorites/{id}", s.handleRemoveFavorite)
	s.mux.HandleFunc("GET /api/recent", s.handleListRecent)
	s.mux.HandleFunc("POST /api/recent", s.handleAddRecent)

	// Settings and source selection
	s.mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	s.mux.HandleFunc("PUT /api/settings", s.handleSaveSettings)
	s.mux.HandleFunc("GET /api/source", s.handleGetSource)
	s.mux.HandleFunc("PUT /api/source", s.handleSetSource)

	// Maintenance
	s.mux.HandleFunc("DELETE /api/cache", s.handleClearCache)
	s.mux.HandleFunc("POST /api/reset", s.handleReset)

	// Docs
	s.mux.HandleFunc("GET /api/docs", handleSwaggerUI)
	s.mux.HandleFunc("GET /api/docs/openapi.yaml", handleOpenAPISpec)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.cfg.ServerPort
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      withCORS(withLogging(s)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

// --- status / refresh handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap, loading, lastErr := s.state.Snapshot()
	src := s.state.Source()

	resp := map[string]any{
		"source":  src.Kind(),
		"label":   src.Label(),
		"loading": loading,
	}
	if lastErr != "" {
		resp["error"] = lastErr
	}
	if snap != nil {
		resp["channel_count"] = len(snap.Data.Channels)
		resp["last_updated"] = snap.Data.LastUpdated
		resp["from_cache"] = snap.FromCache
		if snap.FromCache {
			resp["cache_date"] = snap.CacheDate
		}
		if snap.Notice != "" {
			resp["notice"] = snap.Notice
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") != "false"

	// With Redis the refresh runs on the background worker; without it,
	// inline.
	if s.rds != nil {
		job := cache.RefreshJob{Force: force}
		if err := cache.Enqueue(r.Context(), s.rds, cache.RefreshQueue, job); err != nil {
			writeErr(w, http.StatusInternalServerError, fmt.Errorf("enqueue refresh: %w", err))
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "force": force})
		return
	}

	src := s.state.Source()
	gen := s.state.Begin()
	res, err := s.pipeline.LoadData(r.Context(), src, force)
	if err != nil {
		s.state.Fail(gen, err)
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	s.state.Apply(gen, state.Snapshot{
		Data:      res.Data,
		Source:    src,
		FromCache: res.FromCache,
		CacheDate: res.CacheDate,
		Notice:    res.Notice,
	})

	resp := map[string]any{
		"channel_count": len(res.Data.Channels),
		"from_cache":    res.FromCache,
	}
	if res.Notice != "" {
		resp["notice"] = res.Notice
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- channel handlers ---

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	q := r.URL.Query()

	presence, valid := filter.ParseStreamPresence(q.Get("streams"))
	if !valid {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid streams filter: %s (use all, with-streams or no-streams)", q.Get("streams")))
		return
	}

	f := filter.Filters{
		Query:    q.Get("q"),
		Country:  q.Get("country"),
		Category: q.Get("category"),
		Language: q.Get("language"),
		Presence: presence,
		HideNSFW: true,
	}
	switch q.Get("hide_nsfw") {
	case "", "true", "1":
	case "false", "0":
		f.HideNSFW = false
	default:
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid hide_nsfw: %s (use true or false)", q.Get("hide_nsfw")))
		return
	}

	limit, offset, err := parsePagination(q.Get("limit"), q.Get("offset"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	channels := filter.Apply(snap.Data, f)
	total := len(channels)
	if offset > len(channels) {
		offset = len(channels)
	}
	channels = channels[offset:]
	if len(channels) > limit {
		channels = channels[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"channels": channels,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// streamEntry annotates a stream with the mixed-content flag an
// HTTPS-hosted client needs for the hide-HTTP setting.
type streamEntry struct {
	models.Stream
	MixedContent bool `json:"mixed_content"`
}

func streamEntries(streams []models.Stream) []streamEntry {
	out := make([]streamEntry, len(streams))
	for i, st := range streams {
		out[i] = streamEntry{Stream: st, MixedContent: st.IsHTTP()}
	}
	return out
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	id := r.PathValue("id")
	ch, exists := snap.Data.Channels[id]
	if !exists {
		writeErr(w, http.StatusNotFound, fmt.Errorf("channel %s not found", id))
		return
	}

	favorite, err := s.store.IsFavorite(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"channel":  ch,
		"streams":  streamEntries(snap.Data.StreamsByChannel[id]),
		"favorite": favorite,
	})
}

func (s *Server) handleGetChannelStreams(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, exists := snap.Data.Channels[id]; !exists {
		writeErr(w, http.StatusNotFound, fmt.Errorf("channel %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channel_id": id,
		"streams":    streamEntries(snap.Data.StreamsByChannel[id]),
	})
}

// --- semantic search handler ---

func (s *Server) handleSearchChannels(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("semantic search is not configured (VOYAGE_API_KEY not set)"))
		return
	}

	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("q parameter is required"))
		return
	}
	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", v))
			return
		}
		if n > 200 {
			n = 200
		}
		limit = n
	}

	vecs, err := s.embedder.Embed(r.Context(), []string{query}, "query")
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("embed query: %w", err))
		return
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("empty embedding returned"))
		return
	}

	results, err := s.store.SemanticSearch(r.Context(), vecs[0], limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []store.SemanticResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"channels": results,
		"limit":    limit,
	})
}

// --- taxonomy handlers ---

func (s *Server) handleListCountries(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	type entry struct {
		models.Country
		ChannelCount int `json:"channel_count"`
	}
	codes := sortedKeys(snap.Data.Countries)
	out := make([]entry, 0, len(codes))
	for _, code := range codes {
		out = append(out, entry{
			Country:      snap.Data.Countries[code],
			ChannelCount: len(snap.Data.ChannelsByCountry[code]),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	type entry struct {
		ID           string `json:"id"`
		ChannelCount int    `json:"channel_count"`
	}
	ids := sortedKeys(snap.Data.Categories)
	out := make([]entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, entry{ID: id, ChannelCount: len(snap.Data.ChannelsByCategory[id])})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListLanguages(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.requireData(w)
	if !ok {
		return
	}
	type entry struct {
		models.Language
		ChannelCount int `json:"channel_count"`
	}
	codes := sortedKeys(snap.Data.Languages)
	out := make([]entry, 0, len(codes))
	for _, code := range codes {
		out = append(out, entry{
			Language:     snap.Data.Languages[code],
			ChannelCount: len(snap.Data.ChannelsByLanguage[code]),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// --- favorites / history handlers ---

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.store.ListFavorites(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	// Resolve channels when a snapshot is loaded; favorites whose ids
	// are no longer in the dataset still list, unresolved.
	snap, _, _ := s.state.Snapshot()
	type entry struct {
		models.Favorite
		Channel *models.Channel `json:"channel,omitempty"`
	}
	out := make([]entry, 0, len(favorites))
	for _, f := range favorites {
		e := entry{Favorite: f}
		if snap != nil {
			if ch, ok := snap.Data.Channels[f.ChannelID]; ok {
				e.Channel = &ch
			}
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.AddFavorite(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channel_id": id, "favorite": true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveFavorite(r.Context(), id); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", v))
			return
		}
		limit = n
	}
	recents, err := s.store.ListRecentlyPlayed(r.Context(), limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if recents == nil {
		recents = []models.RecentlyPlayed{}
	}
	writeJSON(w, http.StatusOK, recents)
}

type addRecentRequest struct {
	ChannelID       string `json:"channel_id"`
	StreamURL       string `json:"stream_url"`
	DurationSeconds *int   `json:"duration_seconds"`
}

func (s *Server) handleAddRecent(w http.ResponseWriter, r *http.Request) {
	var req addRecentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if req.ChannelID == "" || req.StreamURL == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("channel_id and stream_url are required"))
		return
	}
	err := s.store.AddRecentlyPlayed(r.Context(), models.RecentlyPlayed{
		ChannelID:       req.ChannelID,
		StreamURL:       req.StreamURL,
		PlayedAt:        time.Now(),
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"channel_id": req.ChannelID})
}

// --- settings / source handlers ---

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	if settings.Volume < 0 || settings.Volume > 1 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("volume must be between 0 and 1"))
		return
	}
	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetSource(w http.ResponseWriter, _ *http.Request) {
	src := s.state.Source()
	resp := map[string]any{"source": src.Kind(), "label": src.Label()}
	if custom, ok := src.(models.CustomM3USource); ok {
		resp["url"] = custom.URL
	}
	writeJSON(w, http.StatusOK, resp)
}

type setSourceRequest struct {
	Source string `json:"source"`
	URL    string `json:"url"`
}

func (s *Server) handleSetSource(w http.ResponseWriter, r *http.Request) {
	var req setSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	src, err := models.ParseSource(req.Source, req.URL)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}

	// Switching clears the old snapshot; any in-flight load becomes
	// stale and its result is dropped on apply.
	gen := s.state.SetSource(src)

	if s.rds != nil {
		job := cache.RefreshJob{Source: src.Kind(), CustomURL: req.URL}
		if err := cache.Enqueue(r.Context(), s.rds, cache.RefreshQueue, job); err != nil {
			writeErr(w, http.StatusInternalServerError, fmt.Errorf("enqueue refresh: %w", err))
			return
		}
	} else {
		go func() {
			res, err := s.pipeline.LoadData(context.Background(), src, false)
			if err != nil {
				s.state.Fail(gen, err)
				return
			}
			s.state.Apply(gen, state.Snapshot{
				Data:      res.Data,
				Source:    src,
				FromCache: res.FromCache,
				CacheDate: res.CacheDate,
				Notice:    res.Notice,
			})
		}()
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"source": src.Kind(), "label": src.Label()})
}

// --- maintenance handlers ---

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearDataCache(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearAll(r.Context()); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeNoContent(w)
}

// --- middleware ---

// withCORS adds CORS headers to every response and handles preflight
// OPTIONS requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with a request id, method, status, and
// duration. The full id goes back in the X-Request-ID header.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := requestID(r)
		w.Header().Set("X-Request-ID", rid)
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		statusColor := colorForStatus(sw.status)
		methodColor := colorForMethod(r.Method)
		log.Printf("%s %-7s \x1b[0m %s %3d \x1b[0m %s  %s %s",
			methodColor, r.Method,
			statusColor, sw.status,
			formatDuration(time.Since(start)),
			rid[:8], r.URL.RequestURI(),
		)
	})
}

func requestID(r *http.Request) string {
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		return rid
	}
	return uuid.NewString()
}

func colorForStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "\x1b[32m" // green
	case code >= 300 && code < 400:
		return "\x1b[36m" // cyan
	case code >= 400 && code < 500:
		return "\x1b[33m" // yellow
	default:
		return "\x1b[31m" // red
	}
}

func colorForMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "\x1b[36m" // cyan
	case http.MethodPost:
		return "\x1b[32m" // green
	case http.MethodPatch, http.MethodPut:
		return "\x1b[33m" // yellow
	case http.MethodDelete:
		return "\x1b[31m" // red
	default:
		return "\x1b[37m" // white
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// --- helpers ---

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// requireData returns the current snapshot or writes the loading/error
// response when no data is available yet.
func (s *Server) requireData(w http.ResponseWriter) (*state.Snapshot, bool) {
	snap, loading, lastErr := s.state.Snapshot()
	if snap != nil {
		return snap, true
	}
	if loading {
		writeErr(w, http.StatusServiceUnavailable, errors.New("data is still loading, retry shortly"))
		return nil, false
	}
	if lastErr != "" {
		writeErr(w, http.StatusServiceUnavailable, fmt.Errorf("data unavailable: %s", lastErr))
		return nil, false
	}
	writeErr(w, http.StatusServiceUnavailable, errors.New("no data loaded"))
	return nil, false
}

func parsePagination(limitStr, offsetStr string) (limit, offset int, err error) {
	limit = 50
	if limitStr != "" {
		n, convErr := strconv.Atoi(limitStr)
		if convErr != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid limit: %s", limitStr)
		}
		limit = n
	}
	if limit > 200 {
		limit = 200
	}
	if offsetStr != "" {
		n, convErr := strconv.Atoi(offsetStr)
		if convErr != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid offset: %s", offsetStr)
		}
		offset = n
	}
	return limit, offset, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		log.Printf("ERROR %d: %v", status, err)
	}
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: err.Error(),
	})
}

// --- docs handlers ---

func handleOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.OpenAPISpec)
}

func handleSwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, swaggerUIHTML)
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>tvgrid API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box;overflow-y:scroll}*,*:before,*:after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api/docs/openapi.yaml",
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis],
    });
  </script>
</body>
</html>`
