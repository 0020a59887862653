//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Visitor is a directory entry. ID is the visitor code stored in the list item Title.
type Visitor struct {
	ItemID    string `json:"item_id,omitempty"`
	ID        string `json:"id"`
	FirstName string `json:"nome"`
	LastName  string `json:"cognome"`
	Company   string `json:"azienda,omitempty"`
}

// PresentVisitor is a visitor whose latest access in the lookback window is an entry.
type PresentVisitor struct {
	VisitorID          string `json:"visitatoreId"`
	FirstName          string `json:"nome"`
	LastName           string `json:"cognome"`
	Company            string `json:"azienda"`
	EnteredAt          string `json:"timestampIngresso"`
	AccessPoint        string `json:"puntoAccesso"`
	DestinationPath    string `json:"PercorsoDestinazione,omitempty"`
	AppointmentContact string `json:"ReferenteAppuntamento,omitempty"`
}
