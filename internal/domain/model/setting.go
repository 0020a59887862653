//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Setting is one key/value row of the kiosk settings list. Key is the item Title.
type Setting struct {
	ItemID      string `json:"id,omitempty"`
	Key         string `json:"Title"`
	Value       string `json:"Valore"`
	Description string `json:"Descrizione,omitempty"`
}

// UpdateSettingRequest is the body of a setting upsert.
type UpdateSettingRequest struct {
	Value string `json:"Valore"`
}
