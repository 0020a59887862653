package testutil

import (
	"time"

	"github.com/target/totem-api/internal/domain/model"
)

// AccessBuilder builds access events for tests with kiosk defaults.
type AccessBuilder struct {
	a model.Access
}

// NewAccess starts an entry event for visitorID at TestTime().
func NewAccess(visitorID string) *AccessBuilder {
	return &AccessBuilder{a: model.Access{
		VisitorID:   visitorID,
		Timestamp:   model.FormatTimestamp(TestTime()),
		Action:      model.ActionEntry,
		AccessPoint: model.DefaultAccessPoint,
		Category:    model.DefaultAccessCategory,
	}}
}

// WithID sets the list item id.
func (b *AccessBuilder) WithID(id string) *AccessBuilder {
	b.a.ID = id
	return b
}

// At sets the event timestamp.
func (b *AccessBuilder) At(t time.Time) *AccessBuilder {
	b.a.Timestamp = model.FormatTimestamp(t)
	return b
}

// Exit turns the event into an exit.
func (b *AccessBuilder) Exit() *AccessBuilder {
	b.a.Action = model.ActionExit
	return b
}

// WithDestination sets the destination path.
func (b *AccessBuilder) WithDestination(path string) *AccessBuilder {
	b.a.DestinationPath = path
	return b
}

// WithContact sets the appointment contact.
func (b *AccessBuilder) WithContact(name string) *AccessBuilder {
	b.a.AppointmentContact = name
	return b
}

// Build returns the access.
func (b *AccessBuilder) Build() model.Access { return b.a }

// Visitor returns a directory entry.
func Visitor(id, first, last, company string) model.Visitor {
	return model.Visitor{ID: id, FirstName: first, LastName: last, Company: company}
}
