package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/totem-api/internal/errors"
)

const testToken = "graph-token"

func staticToken(token string) TokenSourceFunc {
	return func(context.Context) (string, error) { return token, nil }
}

// newTestGraph starts a fake Graph rooted at /v1.0 and a client pointed at it.
func newTestGraph(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{BaseURL: srv.URL + "/v1.0/", Tokens: staticToken(testToken)})
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	require.ErrorContains(t, err, "token source is required")

	_, err = NewClient(ClientOptions{Tokens: staticToken("x"), BaseURL: "not a url"})
	require.ErrorContains(t, err, "invalid base URL")

	c, err := NewClient(ClientOptions{Tokens: staticToken("x")})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
}

func TestEncodeQuery(t *testing.T) {
	q := url.Values{
		"$top":    {"200"},
		"$filter": {"fields/field_1 eq 'O''Brien'"},
	}
	assert.Equal(t, "$filter=fields%2Ffield_1%20eq%20%27O%27%27Brien%27&$top=200", encodeQuery(q))
}

func TestClient_SendsBearerToken(t *testing.T) {
	c := newTestGraph(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1.0/me", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]string{"id": "u1"})
	})

	var out struct{ ID string }
	require.NoError(t, c.doJSON(context.Background(), request{op: "me", method: http.MethodGet, path: "/me"}, &out))
	assert.Equal(t, "u1", out.ID)
}

func TestClient_StatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusNotFound, apperrors.IsNotFound},
		{http.StatusUnauthorized, apperrors.IsUnauthorized},
		{http.StatusForbidden, apperrors.IsForbidden},
		{http.StatusServiceUnavailable, apperrors.IsUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestGraph(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tt.status, map[string]any{
					"error": map[string]string{"code": "itemNotFound", "message": "The resource could not be found."},
				})
			})

			err := c.doJSON(context.Background(), request{op: "me", method: http.MethodGet, path: "/me"}, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected code %q", apperrors.GetCode(err))
			assert.Equal(t, tt.status, apperrors.GetStatus(err))

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "itemNotFound", se.Code)
		})
	}
}

func TestClient_TokenErrorSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
	defer srv.Close()

	tokenErr := errors.New("no account")
	c, err := NewClient(ClientOptions{
		BaseURL: srv.URL,
		Tokens:  TokenSourceFunc(func(context.Context) (string, error) { return "", tokenErr }),
	})
	require.NoError(t, err)

	err = c.doJSON(context.Background(), request{op: "me", method: http.MethodGet, path: "/me"}, nil)
	require.ErrorIs(t, err, tokenErr)
	assert.Zero(t, hits.Load())
}

func TestCollect_FollowsNextLinkAndRepeatsHeaders(t *testing.T) {
	c := newTestGraph(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, preferNonIndexed, r.Header.Get(headerPrefer))
		switch r.URL.Query().Get("page") {
		case "":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"value":           []map[string]string{{"id": "1"}, {"id": "2"}},
				"@odata.nextLink": "http://" + r.Host + "/v1.0/items?page=2",
			})
		case "2":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"value": []map[string]string{{"id": "3"}},
			})
		}
	})

	type item struct {
		ID string `json:"id"`
	}
	r := request{
		op:     "list_items",
		method: http.MethodGet,
		path:   "/items",
		header: http.Header{headerPrefer: {preferNonIndexed}},
	}

	all, err := collect[item](context.Background(), c, r, 0)
	require.NoError(t, err)
	assert.Equal(t, []item{{"1"}, {"2"}, {"3"}}, all)

	limited, err := collect[item](context.Background(), c, r, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestResolve_RejectsForeignNextLink(t *testing.T) {
	c, err := NewClient(ClientOptions{BaseURL: "https://graph.microsoft.com/v1.0", Tokens: staticToken("x")})
	require.NoError(t, err)

	_, err = c.resolve(request{op: "list_items", path: "https://evil.example/v1.0/items?page=2"})
	require.ErrorContains(t, err, "does not match")

	got, err := c.resolve(request{op: "list_items", path: "https://graph.microsoft.com/v1.0/items?$skiptoken=abc"})
	require.NoError(t, err)
	assert.Equal(t, "https://graph.microsoft.com/v1.0/items?$skiptoken=abc", got)
}
