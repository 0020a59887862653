package graph

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/ports"
)

const (
	profileSelect = "id,displayName,givenName,surname,mail,jobTitle,userPrincipalName"
	userSelect    = "id,displayName,mail,jobTitle,userPrincipalName"
	sitesPageCap  = 200
)

// Directory implements ports.GraphDirectory.
type Directory struct {
	client *Client
}

var _ ports.GraphDirectory = (*Directory)(nil)

// NewDirectory creates a directory adapter.
func NewDirectory(client *Client) (*Directory, error) {
	if client == nil {
		return nil, errors.New("graph: client is required")
	}
	return &Directory{client: client}, nil
}

// Me returns the signed-in user's profile.
func (d *Directory) Me(ctx context.Context) (model.UserProfile, error) {
	var p model.UserProfile
	err := d.client.doJSON(ctx, request{
		op:     "me",
		method: http.MethodGet,
		path:   "/me",
		query:  url.Values{"$select": {profileSelect}},
	}, &p)
	return p, err
}

// SearchSites runs a site search; an empty query lists every visible site.
func (d *Directory) SearchSites(ctx context.Context, query string) ([]model.SharePointSite, error) {
	if strings.TrimSpace(query) == "" {
		query = "*"
	}
	return collect[model.SharePointSite](ctx, d.client, request{
		op:     "search_sites",
		method: http.MethodGet,
		path:   "/sites",
		query:  url.Values{"search": {query}},
	}, sitesPageCap)
}

// SiteByPath resolves a site from its host name and server-relative path.
func (d *Directory) SiteByPath(ctx context.Context, hostname, path string) (model.SharePointSite, error) {
	if hostname == "" {
		return model.SharePointSite{}, apperrors.ValidationField("hostname", "hostname is required")
	}
	target := "/sites/" + url.PathEscape(hostname)
	if trimmed := strings.Trim(path, "/"); trimmed != "" {
		segments := strings.Split(trimmed, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		target += ":/" + strings.Join(segments, "/")
	}

	var site model.SharePointSite
	err := d.client.doJSON(ctx, request{
		op:     "site_by_path",
		method: http.MethodGet,
		path:   target,
	}, &site)
	return site, err
}

// SearchUsers matches the query against display name and mail.
func (d *Directory) SearchUsers(ctx context.Context, query string, top int) ([]model.DirectoryUser, error) {
	// Double quotes delimit $search terms and cannot be escaped.
	q := strings.ReplaceAll(strings.TrimSpace(query), `"`, "")
	if top <= 0 {
		top = 10
	}

	var p page[model.DirectoryUser]
	err := d.client.doJSON(ctx, request{
		op:     "search_users",
		method: http.MethodGet,
		path:   "/users",
		query: url.Values{
			"$search": {`"displayName:` + q + `" OR "mail:` + q + `"`},
			"$select": {userSelect},
			"$top":    {strconv.Itoa(top)},
		},
		header: http.Header{headerConsistency: {"eventual"}},
	}, &p)
	if err != nil {
		return nil, err
	}
	return p.Value, nil
}

// UserPhoto downloads a user's profile picture.
func (d *Directory) UserPhoto(ctx context.Context, userID string) (model.Photo, error) {
	resp, err := d.client.send(ctx, request{
		op:     "user_photo",
		method: http.MethodGet,
		path:   "/users/" + url.PathEscape(userID) + "/photo/$value",
		header: http.Header{"Accept": {"image/*"}},
	})
	if err != nil {
		return model.Photo{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoSize))
	if err != nil {
		return model.Photo{}, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "graph user_photo: read body")
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return model.Photo{ContentType: ct, Data: data}, nil
}
