package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegistrationResult:
		o.printRegistrationResult(v)
	case SessionResult:
		o.printSessionResult(v)
	case Profile:
		o.printProfile(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Alert response type (matches API)
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Profile response type
type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationResult response type
type RegistrationResult struct {
	Alert   Alert   `json:"alert"`
	Profile Profile `json:"profile"`
}

// Account response type
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// SessionResult response type
type SessionResult struct {
	Account      Account   `json:"account"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HealthResult is the health response plus where and how fast it answered
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server"`
	LatencyMS int64  `json:"latency_ms"`
}

func (o *Output) printRegistrationResult(r RegistrationResult) {
	_, _ = fmt.Fprintf(o.w, "%s: %s\n", r.Alert.Title, r.Alert.Message)
	o.printProfile(r.Profile)
}

func (o *Output) printSessionResult(s SessionResult) {
	_, _ = fmt.Fprintf(o.w, "Signed in as %s (%s)\n", s.Account.DisplayName, s.Account.Email)
	_, _ = fmt.Fprintf(o.w, "UID: %s\n", s.Account.UID)
	_, _ = fmt.Fprintf(o.w, "Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printProfile(p Profile) {
	_, _ = fmt.Fprintf(o.w, "UID: %s\n", p.UID)
	_, _ = fmt.Fprintf(o.w, "Display name: %s\n", p.DisplayName)
	_, _ = fmt.Fprintf(o.w, "Email: %s\n", p.Email)
	_, _ = fmt.Fprintf(o.w, "Created: %s\n", p.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Server: %s\n", h.Server)
	_, _ = fmt.Fprintf(o.w, "Status: %s (%dms)\n", h.Status, h.LatencyMS)
}
