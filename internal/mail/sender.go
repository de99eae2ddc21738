package mail

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/core/htmltext"
	"github.com/dailyayah/dailyayah/internal/logging"
)

// SenderConfig holds SMTP connection settings.
type SenderConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	BaseURL  string
}

// Sender delivers email over SMTP with STARTTLS.
type Sender struct {
	cfg SenderConfig
}

// NewSender returns a Sender for the given SMTP settings.
func NewSender(cfg SenderConfig) *Sender {
	return &Sender{cfg: cfg}
}

var verseTemplate = template.Must(template.New("verse").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center;">
    <h1>{{.Heading}}</h1>
    <p>Verse {{.Record.VerseKey}}</p>
  </div>
  <div style="padding: 30px; background: white;">
    <p>{{.Greeting}}</p>
    <p dir="rtl" style="font-size: 28px; text-align: center; line-height: 2;">{{.Record.ArabicText}}</p>
    <p style="font-style: italic;">{{.Record.Translation}}</p>
    {{if .Tafsir}}<div style="background: #f8f9fa; padding: 20px; border-left: 4px solid #667eea; margin: 20px 0;">
      <h3 style="color: #667eea; margin-top: 0;">Commentary</h3>
      {{.Tafsir}}
    </div>{{end}}
  </div>
  <div style="background: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #666;">
    <p>You're receiving this because you subscribed to Daily Ayah.</p>
    <p><a href="{{.UnsubscribeURL}}" style="color: #666;">Unsubscribe</a></p>
  </div>
</div>`))

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center;">
    <h1>Welcome to Daily Ayah</h1>
    <p>Your spiritual journey begins now</p>
  </div>
  <div style="padding: 30px; background: white;">
    <p>{{.Greeting}}</p>
    <p>Thank you for subscribing to Daily Ayah! You will now receive verses from
    the Holy Quran with translations and commentary {{.Frequency}}.</p>
    <ul>
      <li>Authentic verses from the Holy Quran</li>
      <li>English translations by Taqi Usmani</li>
      <li>Commentary (Tafsir) by Ibn Kathir</li>
    </ul>
  </div>
  <div style="background: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #666;">
    <p>You're receiving this because you subscribed to Daily Ayah.</p>
    <p><a href="{{.UnsubscribeURL}}" style="color: #666;">Unsubscribe</a></p>
  </div>
</div>`))

func greeting(name string) string {
	if name != "" {
		return "Dear " + name + ","
	}
	return "Peace be upon you,"
}

// unsubscribeURL joins the configured base URL with the token path.
func (s *Sender) unsubscribeURL(token string) string {
	base := strings.TrimSuffix(s.cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	return base + "/unsubscribe/" + token
}

// SendVerse delivers a verse email to one subscriber.
func (s *Sender) SendVerse(sub Subscriber, rec corpus.Record, heading string) error {
	var body strings.Builder
	err := verseTemplate.Execute(&body, struct {
		Heading        string
		Greeting       string
		Record         corpus.Record
		Tafsir         template.HTML
		UnsubscribeURL string
	}{
		Heading:        heading,
		Greeting:       greeting(sub.Name),
		Record:         rec,
		Tafsir:         template.HTML(htmltext.CleanTafsir(rec.Tafsir)),
		UnsubscribeURL: s.unsubscribeURL(sub.UnsubscribeToken),
	})
	if err != nil {
		return fmt.Errorf("rendering verse email: %w", err)
	}
	subject := fmt.Sprintf("%s - Verse %s", heading, rec.VerseKey)
	return s.send(sub.Email, subject, body.String())
}

// SendWelcome delivers the welcome email to a new subscriber.
func (s *Sender) SendWelcome(sub Subscriber) error {
	var body strings.Builder
	err := welcomeTemplate.Execute(&body, struct {
		Greeting       string
		Frequency      string
		UnsubscribeURL string
	}{
		Greeting:       greeting(sub.Name),
		Frequency:      sub.Frequency,
		UnsubscribeURL: s.unsubscribeURL(sub.UnsubscribeToken),
	})
	if err != nil {
		return fmt.Errorf("rendering welcome email: %w", err)
	}
	return s.send(sub.Email, "Welcome to Daily Ayah - Your Spiritual Journey Begins", body.String())
}

func (s *Sender) send(to, subject, htmlBody string) error {
	msg := buildMessage(s.cfg.Sender, to, subject, htmlBody)
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}
	if err := c.Mail(s.cfg.Sender); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}
	logging.Debug("email sent", "to", to, "subject", subject)
	return nil
}

// buildMessage assembles a multipart/alternative MIME message with a plain
// text part derived from the HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	boundary := "ayah-" + uuid.NewString()
	textBody := htmltext.StripTags(htmlBody)

	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("MIME-Version", "1.0")
	header("Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
	b.WriteString("\r\n")

	part := func(contentType, body string) {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "; charset=utf-8\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(wrapBase64(body))
		b.WriteString("\r\n")
	}
	part("text/plain", textBody)
	part("text/html", htmlBody)
	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// wrapBase64 encodes and folds at 76 columns per RFC 2045.
func wrapBase64(s string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	var b strings.Builder
	for len(enc) > 76 {
		b.WriteString(enc[:76])
		b.WriteString("\r\n")
		enc = enc[76:]
	}
	b.WriteString(enc)
	return b.String()
}
