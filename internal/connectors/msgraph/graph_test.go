package msgraph

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

var base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return base.Add(time.Duration(hours) * time.Hour) }

// request is a captured call to the fake Graph API.
type request struct {
	Method      string
	Path        string
	Query       url.Values
	ContentType string
	Body        []byte
}

// fakeGraph serves the handful of Graph endpoints the sources call.
type fakeGraph struct {
	srv *httptest.Server
	mux *http.ServeMux

	mu       sync.Mutex
	requests []request
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()
	f := &fakeGraph{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	f.handle("GET /me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, user{ID: "me-1", DisplayName: "Me", Mail: "me@contoso.com"})
	})
	return f
}

func (f *fakeGraph) serve(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		writeError(w, http.StatusUnauthorized, "InvalidAuthenticationToken", "Access token is empty.")
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, request{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	f.mu.Unlock()
	f.mux.ServeHTTP(w, r)
}

func (f *fakeGraph) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

// find returns the captured requests for path.
func (f *fakeGraph) find(method, path string) []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeGraph) config() *Config {
	cfg := DefaultConfig()
	cfg.AccessToken = "test-token"
	cfg.BaseURL = f.srv.URL
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var ge graphError
	ge.Error.Code = code
	ge.Error.Message = message
	writeJSON(w, status, ge)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unavailable is transient",
			status: http.StatusServiceUnavailable,
			check:  func(t *testing.T, err error) { assert.True(t, domain.IsTransient(err)) },
		},
		{
			name:   "throttled honours Retry-After",
			status: http.StatusTooManyRequests,
			header: map[string]string{"Retry-After": "2"},
			check: func(t *testing.T, err error) {
				var ra *domain.RetryAfterError
				require.ErrorAs(t, err, &ra)
				assert.Equal(t, 2*time.Second, ra.After)
				assert.ErrorIs(t, err, domain.ErrRateLimited)
			},
		},
		{
			name:   "missing folder is permanent not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrNotFound)
				assert.False(t, domain.IsTransient(err))
				assert.Contains(t, err.Error(), "ErrorItemNotFound: gone")
			},
		},
		{
			name:   "forbidden is an auth failure",
			status: http.StatusForbidden,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrAuthInvalid) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeGraph(t)
			f.handle("GET /fail", func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				writeError(w, tt.status, "ErrorItemNotFound", "gone")
			})
			c := NewClient(&http.Client{Transport: bearer("test-token")}, f.srv.URL)

			err := c.Get(t.Context(), "/fail", nil, &struct{}{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(http.DefaultClient, srv.URL)

	err := c.Get(t.Context(), "/me", nil, &user{})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestClient_FollowsNextLink(t *testing.T) {
	f := newFakeGraph(t)
	f.handle("GET /items", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, http.StatusOK, map[string]any{"value": []map[string]string{{"id": "c"}}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"value":           []map[string]string{{"id": "a"}, {"id": "b"}},
			"@odata.nextLink": f.srv.URL + "/items?page=2",
		})
	})
	c := NewClient(&http.Client{Transport: bearer("test-token")}, f.srv.URL)
	type item struct {
		ID string `json:"id"`
	}

	all, err := list[item](t.Context(), c, "/items", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []item{{"a"}, {"b"}, {"c"}}, all)

	two, err := list[item](t.Context(), c, "/items", nil, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Len(t, f.find(http.MethodGet, "/items"), 3, "the limited read stops after the first page")
}

func TestEncodeQuery(t *testing.T) {
	q := url.Values{}
	q.Set("$top", "5")
	q.Set("$filter", "isRead eq false")
	assert.Equal(t, "$filter=isRead%20eq%20false&$top=5", encodeQuery(q))
	assert.Equal(t, "", encodeQuery(nil))
}

func TestSession_ConnectFailsOnBadToken(t *testing.T) {
	f := newFakeGraph(t)
	cfg := f.config()
	cfg.AccessToken = "wrong"
	s := NewOutlook(cfg)

	err := s.Connect(t.Context())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	assert.False(t, s.IsConnected())
}

func TestSession_Lifecycle(t *testing.T) {
	f := newFakeGraph(t)
	s := NewTeams(f.config())

	_, err := s.FetchMessages(t.Context(), domain.MessageQuery{})
	require.ErrorIs(t, err, domain.ErrNotConnected)

	require.NoError(t, s.Connect(t.Context()))
	require.NoError(t, s.Connect(t.Context()))
	assert.True(t, s.IsConnected())
	assert.Len(t, f.find(http.MethodGet, "/me"), 1, "second Connect is a no-op")

	require.NoError(t, s.Disconnect(t.Context()))
	assert.False(t, s.IsConnected())
	require.NoError(t, s.Disconnect(t.Context()))
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr error
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "refresh token with defaults",
			values: map[string]string{"client_id": "id", "refresh_token": "rt"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "common", cfg.Tenant)
				assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
				assert.Equal(t, 50, cfg.PageSize)
				assert.Equal(t, "inbox", cfg.MailFolder)
			},
		},
		{
			name: "overrides",
			values: map[string]string{
				"access_token": "at", "tenant": "contoso.onmicrosoft.com",
				"base_url": "http://localhost:9000/", "page_size": "10", "mail_folder": "archive", "max_chats": "3",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "contoso.onmicrosoft.com", cfg.Tenant)
				assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
				assert.Equal(t, 10, cfg.PageSize)
				assert.Equal(t, "archive", cfg.MailFolder)
				assert.Equal(t, 3, cfg.MaxChats)
			},
		},
		{name: "no credentials", values: map[string]string{}, wantErr: domain.ErrAuthRequired},
		{name: "refresh token without client", values: map[string]string{"refresh_token": "rt"}, wantErr: domain.ErrAuthRequired},
		{name: "bad page size", values: map[string]string{"access_token": "at", "page_size": "0"}, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig(tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_TokenSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AccessToken = "static"
	ts, err := cfg.TokenSource(t.Context())
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "static", tok.AccessToken)

	_, err = DefaultConfig().TokenSource(t.Context())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

// bearer is a RoundTripper adding a fixed token.
type bearer string

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+string(b))
	return http.DefaultTransport.RoundTrip(r)
}
