// Package mail implements the email subscription feature: a SQLite-backed
// subscriber registry, an SMTP sender, and a scheduler that delivers the
// verse of the day to daily and weekly subscribers.
package mail

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dailyayah/dailyayah/core/errors"
	"github.com/dailyayah/dailyayah/internal/sqlite"
)

// Frequency values accepted for a subscription.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Subscriber is one registered email recipient.
type Subscriber struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Frequency        string    `json:"frequency"`
	SubscribedAt     time.Time `json:"subscribed_at"`
	UnsubscribeToken string    `json:"unsubscribe_token"`
	Active           bool      `json:"active"`
	LastEmailSent    time.Time `json:"last_email_sent,omitzero"`
	TotalEmailsSent  int       `json:"total_emails_sent"`
}

// Stats summarizes the registry for the admin surface.
type Stats struct {
	Total    int `json:"total_subscribers"`
	Active   int `json:"active_subscribers"`
	Daily    int `json:"daily_subscribers"`
	Weekly   int `json:"weekly_subscribers"`
	Inactive int `json:"inactive_subscribers"`
}

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
	email              TEXT PRIMARY KEY,
	name               TEXT NOT NULL DEFAULT '',
	frequency          TEXT NOT NULL,
	subscribed_at      TEXT NOT NULL,
	unsubscribe_token  TEXT NOT NULL UNIQUE,
	active             INTEGER NOT NULL DEFAULT 1,
	last_email_sent    TEXT,
	total_emails_sent  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_subscribers_token ON subscribers(unsubscribe_token);
`

// Registry stores subscribers in a SQLite database.
type Registry struct {
	db *sql.DB
}

// OpenRegistry opens (creating if necessary) the subscriber database.
func OpenRegistry(path string) (*Registry, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening subscriber database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing subscriber schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Subscribe registers an email address, or reactivates a previously
// unsubscribed one. An unknown frequency falls back to daily. Subscribing
// an already-active address is an error.
func (r *Registry) Subscribe(email, name, frequency string) (Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return Subscriber{}, fmt.Errorf("%w: invalid email address format", errors.ErrInvalidInput)
	}
	if frequency != FrequencyDaily && frequency != FrequencyWeekly {
		frequency = FrequencyDaily
	}

	existing, err := r.get(email)
	switch {
	case err == nil && existing.Active:
		return Subscriber{}, fmt.Errorf("%w: %s is already subscribed", errors.ErrInvalidInput, email)
	case err == nil:
		// Reactivate, keeping the original token so old unsubscribe links
		// keep working.
		existing.Active = true
		existing.Frequency = frequency
		if name != "" {
			existing.Name = name
		}
		_, err = r.db.Exec(
			`UPDATE subscribers SET active = 1, frequency = ?, name = ? WHERE email = ?`,
			existing.Frequency, existing.Name, email,
		)
		if err != nil {
			return Subscriber{}, fmt.Errorf("reactivating %s: %w", email, err)
		}
		return existing, nil
	case !errors.IsNotFound(err):
		return Subscriber{}, err
	}

	sub := Subscriber{
		Email:            email,
		Name:             name,
		Frequency:        frequency,
		SubscribedAt:     time.Now().UTC(),
		UnsubscribeToken: uuid.NewString(),
		Active:           true,
	}
	_, err = r.db.Exec(
		`INSERT INTO subscribers (email, name, frequency, subscribed_at, unsubscribe_token, active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		sub.Email, sub.Name, sub.Frequency, sub.SubscribedAt.Format(time.RFC3339), sub.UnsubscribeToken,
	)
	if err != nil {
		return Subscriber{}, fmt.Errorf("inserting subscriber %s: %w", email, err)
	}
	return sub, nil
}

// Unsubscribe deactivates the subscriber holding the given token.
func (r *Registry) Unsubscribe(token string) error {
	res, err := r.db.Exec(
		`UPDATE subscribers SET active = 0 WHERE unsubscribe_token = ? AND active = 1`, token,
	)
	if err != nil {
		return fmt.Errorf("unsubscribing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unsubscribing: %w", err)
	}
	if n == 0 {
		return &errors.NotFoundError{Resource: "subscription", ID: token, Err: errors.ErrNotFound}
	}
	return nil
}

// Active returns active subscribers, optionally filtered by frequency.
// An empty frequency returns all active subscribers.
func (r *Registry) Active(frequency string) ([]Subscriber, error) {
	query := `SELECT email, name, frequency, subscribed_at, unsubscribe_token, active,
	                 last_email_sent, total_emails_sent
	          FROM subscribers WHERE active = 1`
	args := []any{}
	if frequency != "" {
		query += ` AND frequency = ?`
		args = append(args, frequency)
	}
	query += ` ORDER BY email`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// RecordSend updates delivery bookkeeping after a successful send.
func (r *Registry) RecordSend(email string) error {
	_, err := r.db.Exec(
		`UPDATE subscribers SET last_email_sent = ?, total_emails_sent = total_emails_sent + 1 WHERE email = ?`,
		time.Now().UTC().Format(time.RFC3339), email,
	)
	if err != nil {
		return fmt.Errorf("recording send for %s: %w", email, err)
	}
	return nil
}

// Stats counts subscribers by state.
func (r *Registry) Stats() (Stats, error) {
	var s Stats
	row := r.db.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(active), 0),
		COALESCE(SUM(CASE WHEN active = 1 AND frequency = 'daily' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN active = 1 AND frequency = 'weekly' THEN 1 ELSE 0 END), 0)
		FROM subscribers`)
	if err := row.Scan(&s.Total, &s.Active, &s.Daily, &s.Weekly); err != nil {
		return Stats{}, fmt.Errorf("counting subscribers: %w", err)
	}
	s.Inactive = s.Total - s.Active
	return s, nil
}

func (r *Registry) get(email string) (Subscriber, error) {
	row := r.db.QueryRow(
		`SELECT email, name, frequency, subscribed_at, unsubscribe_token, active,
		        last_email_sent, total_emails_sent
		 FROM subscribers WHERE email = ?`, email,
	)
	sub, err := scanSubscriber(row)
	if err == sql.ErrNoRows {
		return Subscriber{}, &errors.NotFoundError{Resource: "subscriber", ID: email, Err: errors.ErrNotFound}
	}
	return sub, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(s scanner) (Subscriber, error) {
	var (
		sub          Subscriber
		subscribedAt string
		lastSent     sql.NullString
		active       int
	)
	err := s.Scan(&sub.Email, &sub.Name, &sub.Frequency, &subscribedAt,
		&sub.UnsubscribeToken, &active, &lastSent, &sub.TotalEmailsSent)
	if err != nil {
		return Subscriber{}, err
	}
	sub.Active = active != 0
	if t, err := time.Parse(time.RFC3339, subscribedAt); err == nil {
		sub.SubscribedAt = t
	}
	if lastSent.Valid {
		if t, err := time.Parse(time.RFC3339, lastSent.String); err == nil {
			sub.LastEmailSent = t
		}
	}
	return sub, nil
}
