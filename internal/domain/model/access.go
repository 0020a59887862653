//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strconv"
	"strings"
	"time"
)

// Action is the direction of an access event. Wire values are the ones stored
// in the access list and must not change.
type Action string

const (
	ActionEntry Action = "Ingresso"
	ActionExit  Action = "Uscita"
)

// Valid reports whether the action is supported.
func (a Action) Valid() bool {
	switch a {
	case ActionEntry, ActionExit:
		return true
	default:
		return false
	}
}

// Defaults applied to new access events.
const (
	DefaultAccessPoint    = "Kiosk Principale"
	DefaultAccessCategory = "VISITATORE"
	accessTitlePrefix     = "ACC-"
)

// Access is one visitor crossing a control point.
// Timestamp keeps the stored ISO-8601 text; use Time for comparisons.
type Access struct {
	ID                 string `json:"id,omitempty"`
	Title              string `json:"Title,omitempty"`
	VisitorID          string `json:"VisitoreID"`
	VisitorFirstName   string `json:"VisitoreNome,omitempty"`
	VisitorLastName    string `json:"VisitoreCognome,omitempty"`
	Timestamp          string `json:"Timestamp"`
	Action             Action `json:"Azione"`
	AccessPoint        string `json:"PuntoAccesso,omitempty"`
	Note               string `json:"Note,omitempty"`
	Category           string `json:"Categoria,omitempty"`
	DestinationPath    string `json:"PercorsoDestinazione,omitempty"`
	AppointmentContact string `json:"ReferenteAppuntamento,omitempty"`
}

// Time parses Timestamp. Unparsable or empty values yield the zero time, which
// sorts before every real event.
func (a Access) Time() time.Time {
	return ParseTimestamp(a.Timestamp)
}

// ParseTimestamp parses the ISO-8601 forms the list store emits.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatTimestamp renders t the way access events are stored (UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CreateAccessRequest is the input for recording a new access event.
type CreateAccessRequest struct {
	VisitorID          string `json:"VisitoreID"`
	VisitorFirstName   string `json:"VisitoreNome,omitempty"`
	VisitorLastName    string `json:"VisitoreCognome,omitempty"`
	Timestamp          string `json:"Timestamp,omitempty"`
	Action             Action `json:"Azione,omitempty"`
	AccessPoint        string `json:"PuntoAccesso,omitempty"`
	Note               string `json:"Note,omitempty"`
	Category           string `json:"Categoria,omitempty"`
	DestinationPath    string `json:"PercorsoDestinazione,omitempty"`
	AppointmentContact string `json:"ReferenteAppuntamento,omitempty"`
}

// Validate checks the caller supplied values. Empty optional values are filled by NewAccess.
func (r *CreateAccessRequest) Validate() error {
	if r == nil {
		return ErrEmptyRequest
	}
	if strings.TrimSpace(r.VisitorID) == "" {
		return ErrVisitorIDRequired
	}
	if r.Action != "" && !r.Action.Valid() {
		return ErrInvalidAction
	}
	if r.Timestamp != "" && ParseTimestamp(r.Timestamp).IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}

// NewAccess builds the record to store, applying the kiosk defaults.
func NewAccess(req CreateAccessRequest, now time.Time) Access {
	a := Access{
		Title:              accessTitlePrefix + strconv.FormatInt(now.UnixMilli(), 10),
		VisitorID:          strings.TrimSpace(req.VisitorID),
		VisitorFirstName:   req.VisitorFirstName,
		VisitorLastName:    req.VisitorLastName,
		Timestamp:          req.Timestamp,
		Action:             req.Action,
		AccessPoint:        req.AccessPoint,
		Note:               req.Note,
		Category:           req.Category,
		DestinationPath:    req.DestinationPath,
		AppointmentContact: req.AppointmentContact,
	}
	if a.Timestamp == "" {
		a.Timestamp = FormatTimestamp(now)
	}
	if a.Action == "" {
		a.Action = ActionEntry
	}
	if a.AccessPoint == "" {
		a.AccessPoint = DefaultAccessPoint
	}
	if a.Category == "" {
		a.Category = DefaultAccessCategory
	}
	return a
}

// ListAccessesOptions controls a paginated access read.
type ListAccessesOptions struct {
	Top     int
	Filter  string
	OrderBy string
}
