//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"fmt"
	"strconv"
)

// Access list columns are exposed by the store under positional internal names.
// The logical name is used only when the positional one is absent.
const (
	FieldTitle              = "Title"
	FieldVisitorID          = "field_1"
	FieldVisitorFirstName   = "field_2"
	FieldVisitorLastName    = "field_3"
	FieldTimestamp          = "field_4"
	FieldAction             = "field_5"
	FieldAccessPoint        = "field_6"
	FieldNote               = "field_7"
	FieldCategory           = "field_8"
	FieldDestinationPath    = "field_10"
	FieldAppointmentContact = "ReferenteAppuntamento"
)

// AccessSelect is the $select projection used for every access read.
var AccessSelect = []string{
	FieldTitle,
	FieldVisitorID,
	FieldVisitorFirstName,
	FieldVisitorLastName,
	FieldTimestamp,
	FieldAction,
	FieldAccessPoint,
	FieldNote,
	FieldCategory,
	FieldDestinationPath,
	FieldAppointmentContact,
}

// Visitor list columns.
const (
	FieldVisitorFirstNameDir = "field_1"
	FieldVisitorLastNameDir  = "field_2"
	FieldVisitorCompany      = "field_4"
)

// VisitorSelect is the $select projection used for directory reads.
var VisitorSelect = []string{"id", FieldTitle, FieldVisitorFirstNameDir, FieldVisitorLastNameDir, FieldVisitorCompany}

// Settings list columns.
const (
	FieldSettingValue       = "Valore"
	FieldSettingDescription = "Descrizione"
)

// AccessFromFields maps a raw list item into an Access.
func AccessFromFields(itemID string, f map[string]any) Access {
	return Access{
		ID:                 itemID,
		Title:              fieldString(f, FieldTitle),
		VisitorID:          aliased(f, FieldVisitorID, "VisitoreID"),
		VisitorFirstName:   aliased(f, FieldVisitorFirstName, "VisitoreNome"),
		VisitorLastName:    aliased(f, FieldVisitorLastName, "VisitoreCognome"),
		Timestamp:          aliased(f, FieldTimestamp, "Timestamp"),
		Action:             Action(aliased(f, FieldAction, "Azione")),
		AccessPoint:        aliased(f, FieldAccessPoint, "PuntoAccesso"),
		Note:               aliased(f, FieldNote, "Note"),
		Category:           aliased(f, FieldCategory, "Categoria"),
		DestinationPath:    aliased(f, FieldDestinationPath, "PercorsoDestinazione"),
		AppointmentContact: fieldString(f, FieldAppointmentContact),
	}
}

// Fields renders an Access as the positional column map the store expects.
// The appointment contact is only written when set so lists without that
// column keep accepting new events.
func (a Access) Fields() map[string]any {
	f := map[string]any{
		FieldTitle:            a.Title,
		FieldVisitorID:        a.VisitorID,
		FieldVisitorFirstName: a.VisitorFirstName,
		FieldVisitorLastName:  a.VisitorLastName,
		FieldTimestamp:        a.Timestamp,
		FieldAction:           string(a.Action),
		FieldAccessPoint:      a.AccessPoint,
		FieldNote:             a.Note,
		FieldCategory:         a.Category,
		FieldDestinationPath:  a.DestinationPath,
	}
	if a.AppointmentContact != "" {
		f[FieldAppointmentContact] = a.AppointmentContact
	}
	return f
}

// VisitorFromFields maps a raw visitor list item into a Visitor.
func VisitorFromFields(itemID string, f map[string]any) Visitor {
	id := fieldString(f, "id")
	if id == "" {
		id = itemID
	}
	return Visitor{
		ItemID:    id,
		ID:        fieldString(f, FieldTitle),
		FirstName: aliased(f, FieldVisitorFirstNameDir, "Nome"),
		LastName:  aliased(f, FieldVisitorLastNameDir, "Cognome"),
		Company:   aliased(f, FieldVisitorCompany, "Azienda"),
	}
}

// SettingFromFields maps a raw settings list item into a Setting.
func SettingFromFields(itemID string, f map[string]any) Setting {
	return Setting{
		ItemID:      itemID,
		Key:         fieldString(f, FieldTitle),
		Value:       fieldString(f, FieldSettingValue),
		Description: fieldString(f, FieldSettingDescription),
	}
}

// aliased returns the positional column when present (even if empty) and the
// logical column otherwise.
func aliased(f map[string]any, positional, logical string) string {
	if v, ok := f[positional]; ok && v != nil {
		return stringify(v)
	}
	return fieldString(f, logical)
}

func fieldString(f map[string]any, key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
