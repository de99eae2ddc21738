package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/htmltext"
	"github.com/dailyayah/dailyayah/internal/logging"
	"github.com/dailyayah/dailyayah/internal/mail"
)

// verseView is a Record prepared for display: Arabic stripped of inline
// markup, tafsir cleaned down to the allowed tag set.
type verseView struct {
	VerseKey    string
	Surah       int
	Ayah        int
	ArabicText  string
	Translation string
	Tafsir      template.HTML
}

func newVerseView(rec corpus.Record) verseView {
	return verseView{
		VerseKey:    rec.VerseKey,
		Surah:       rec.Surah,
		Ayah:        rec.Ayah,
		ArabicText:  htmltext.StripTags(rec.ArabicText),
		Translation: rec.Translation,
		Tafsir:      template.HTML(htmltext.CleanTafsir(rec.Tafsir)),
	}
}

type versePage struct {
	Title        string
	SectionTitle string
	Date         string
	Verse        verseView
	ButtonLink   string
	ButtonText   string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("template render failed", "template", name, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "message.html", struct {
		Title   string
		Heading string
		Message string
	}{Title: "Daily Ayah", Heading: fmt.Sprintf("Error %d", status), Message: message})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.renderError(w, http.StatusNotFound, "Page not found")
		return
	}
	today := time.Now().Format("2006-01-02")
	rec, ok := s.store.Daily(today)
	if !ok {
		s.renderError(w, http.StatusInternalServerError, "No verses available")
		return
	}
	s.render(w, http.StatusOK, "verse.html", versePage{
		Title:        "Daily Ayah",
		SectionTitle: "Verse of the Day",
		Date:         time.Now().Format("Monday, January 2, 2006"),
		Verse:        newVerseView(rec),
		ButtonLink:   "/random",
		ButtonText:   "Random Ayah",
	})
}

func (s *Server) handleRandomPage(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.Random()
	if !ok {
		s.renderError(w, http.StatusInternalServerError, "No verses available")
		return
	}
	s.render(w, http.StatusOK, "verse.html", versePage{
		Title:        fmt.Sprintf("Quran %s", rec.VerseKey),
		SectionTitle: "Random Ayah",
		Verse:        newVerseView(rec),
		ButtonLink:   "/random",
		ButtonText:   "Generate Another Random Ayah",
	})
}

func (s *Server) handleVersePage(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/verse/")
	rec, ok := s.store.Get(key)
	if !ok {
		s.renderError(w, http.StatusNotFound, fmt.Sprintf("Verse %s not found", key))
		return
	}
	s.render(w, http.StatusOK, "verse.html", versePage{
		Title:        fmt.Sprintf("Quran %s", rec.VerseKey),
		SectionTitle: fmt.Sprintf("Sūrah %d, Āyah %d", rec.Surah, rec.Ayah),
		Verse:        newVerseView(rec),
		ButtonLink:   "/random",
		ButtonText:   "Generate Another Random Ayah",
	})
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var views []verseView
	if query != "" {
		for _, res := range s.store.Search(query, 20) {
			views = append(views, newVerseView(res.Record))
		}
	}
	s.render(w, http.StatusOK, "search.html", struct {
		Title   string
		Query   string
		Results []verseView
	}{Title: "Search Verses", Query: query, Results: views})
}

func (s *Server) handleSubscribePage(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.renderError(w, http.StatusServiceUnavailable, "Email subscriptions are not enabled")
		return
	}

	page := struct {
		Title   string
		Message string
		Success bool
	}{Title: "Subscribe to Daily Ayah"}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, http.StatusBadRequest, "Invalid form submission")
			return
		}
		sub, err := s.registry.Subscribe(
			r.PostFormValue("email"),
			strings.TrimSpace(r.PostFormValue("name")),
			r.PostFormValue("frequency"),
		)
		if err != nil {
			page.Message = subscribeMessage(err)
		} else {
			page.Success = true
			page.Message = fmt.Sprintf("Successfully subscribed to %s Ayah emails!", sub.Frequency)
			s.sendWelcome(sub)
		}
	}
	s.render(w, http.StatusOK, "subscribe.html", page)
}

func (s *Server) handleUnsubscribePage(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.renderError(w, http.StatusServiceUnavailable, "Email subscriptions are not enabled")
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/unsubscribe/")

	heading, message := "Unsubscribed", "You have been unsubscribed from Daily Ayah emails."
	if err := s.registry.Unsubscribe(token); err != nil {
		heading, message = "Invalid Link", "This unsubscribe link is invalid or was already used."
	}
	s.render(w, http.StatusOK, "message.html", struct {
		Title   string
		Heading string
		Message string
	}{Title: "Daily Ayah", Heading: heading, Message: message})
}

// sendWelcome delivers the welcome email without blocking the response.
func (s *Server) sendWelcome(sub mail.Subscriber) {
	if s.sender == nil {
		return
	}
	go func() {
		if err := s.sender.SendWelcome(sub); err != nil {
			logging.Error("welcome email failed", "to", sub.Email, "error", err)
		}
	}()
}

func subscribeMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
