package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/htmltext"
	"github.com/dailyayah/dailyayah/core/versekey"
	"github.com/dailyayah/dailyayah/internal/logging"
)

// maxSearchResults caps the limit query parameter.
const maxSearchResults = 100

// apiVerse is the verse shape served by the JSON API: record fields with
// the tafsir cleaned for direct rendering.
type apiVerse struct {
	VerseKey    string `json:"verse_key"`
	Surah       int    `json:"surah"`
	Ayah        int    `json:"ayah"`
	ArabicText  string `json:"arabic_text"`
	Translation string `json:"translation"`
	Tafsir      string `json:"tafsir"`
}

func newAPIVerse(rec corpus.Record) apiVerse {
	return apiVerse{
		VerseKey:    rec.VerseKey,
		Surah:       rec.Surah,
		Ayah:        rec.Ayah,
		ArabicText:  rec.ArabicText,
		Translation: rec.Translation,
		Tafsir:      htmltext.CleanTafsir(rec.Tafsir),
	}
}

// apiSearchResult wraps a verse with its relevance information.
type apiSearchResult struct {
	VerseData      apiVerse `json:"verse_data"`
	RelevanceScore float64  `json:"relevance_score"`
	MatchedFields  []string `json:"matched_fields"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.store.Audit()
	status := http.StatusOK
	body := map[string]any{
		"status":      "healthy",
		"verse_count": s.store.Len(),
		"cache_valid": report.CacheValid,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	if report.Err != "" {
		status = http.StatusInternalServerError
		body["status"] = "unhealthy"
		body["error"] = report.Err
	}
	writeJSON(w, status, body)
}

func (s *Server) handleAPIVerseOfTheDay(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.Daily(time.Now().Format("2006-01-02"))
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "No verses available")
		return
	}
	writeJSON(w, http.StatusOK, newAPIVerse(rec))
}

func (s *Server) handleAPIRandom(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.Random()
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "No verses available")
		return
	}
	writeJSON(w, http.StatusOK, newAPIVerse(rec))
}

func (s *Server) handleAPIVerse(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/verse/")
	if _, err := versekey.Parse(key); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid verse key format")
		return
	}
	rec, ok := s.store.Get(key)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Verse not found")
		return
	}
	writeJSON(w, http.StatusOK, newAPIVerse(rec))
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, []apiSearchResult{})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxSearchResults)
	}

	results := s.store.Search(query, limit)
	out := make([]apiSearchResult, 0, len(results))
	for _, res := range results {
		out = append(out, apiSearchResult{
			VerseData:      newAPIVerse(res.Record),
			RelevanceScore: res.Score,
			MatchedFields:  res.MatchedTokens,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPISurahs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Surahs())
}

func (s *Server) handleAPIIntegrity(w http.ResponseWriter, r *http.Request) {
	// The report carries its own error form; always 200 so monitoring can
	// read the body.
	writeJSON(w, http.StatusOK, s.store.Audit())
}

// subscribeRequest is the POST /api/subscribe body.
type subscribeRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
}

func (s *Server) handleAPISubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}
	if s.registry == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Email subscriptions are not enabled")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sub, err := s.registry.Subscribe(req.Email, req.Name, req.Frequency)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, subscribeMessage(err))
		return
	}
	s.sendWelcome(sub)
	writeJSON(w, http.StatusOK, map[string]any{
		"subscribed": true,
		"email":      sub.Email,
		"frequency":  sub.Frequency,
	})
}

func (s *Server) handleAPIUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}
	if s.registry == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Email subscriptions are not enabled")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.registry.Unsubscribe(req.Token); err != nil {
		writeJSONError(w, http.StatusNotFound, "Invalid unsubscribe token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unsubscribed": true})
}
