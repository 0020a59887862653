//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// UserProfile is the signed-in user's Graph profile.
type UserProfile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	GivenName         string `json:"givenName,omitempty"`
	Surname           string `json:"surname,omitempty"`
	Mail              string `json:"mail,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

// DirectoryUser is a tenant user returned by people search.
type DirectoryUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

// SharePointSite is a site visible to the signed-in user.
type SharePointSite struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
}

// ListInfo identifies a SharePoint list.
type ListInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
}

// Photo is a binary profile picture.
type Photo struct {
	ContentType string
	Data        []byte
}
