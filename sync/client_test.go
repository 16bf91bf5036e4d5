// ABOUTME: Tests for the contact directory client
// ABOUTME: Uses httptest servers to exercise preconditions, status handling, and payload shapes
package sync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/harperreed/torque/config"
	"github.com/harperreed/torque/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directory returns a server that replies with status and body and counts hits.
func directory(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"https://crm.example.com/api/index.php":    "https://crm.example.com/api/index.php",
		"https://crm.example.com/api/index.php/":   "https://crm.example.com/api/index.php",
		"  https://crm.example.com/api/  ":         "https://crm.example.com/api",
		"https://crm.example.com//":                "https://crm.example.com/",
		"   ":                                      "",
		"/":                                        "",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeBaseURL(in), "input %q", in)
	}
}

func TestFetchContacts_MissingEndpoint(t *testing.T) {
	srv, hits := directory(t, http.StatusOK, "[]")
	client := &Client{HTTPClient: srv.Client()}

	for _, base := range []string{"", "   ", "\t\n", "/", " / "} {
		_, err := client.FetchContacts(context.Background(), base, "key")
		require.Error(t, err, "base %q", base)
		assert.True(t, errors.Is(err, ErrMissingEndpoint), "base %q: %v", base, err)
	}

	// Endpoint wins over credential when both are missing.
	_, err := client.FetchContacts(context.Background(), "", "")
	assert.True(t, errors.Is(err, ErrMissingEndpoint))
	assert.False(t, errors.Is(err, ErrMissingCredential))

	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestFetchContacts_MissingCredential(t *testing.T) {
	srv, hits := directory(t, http.StatusOK, "[]")
	client := &Client{HTTPClient: srv.Client()}

	for _, key := range []string{"", "  "} {
		_, err := client.FetchContacts(context.Background(), srv.URL, key)
		assert.True(t, errors.Is(err, ErrMissingCredential), "key %q: %v", key, err)
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestFetchContacts_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotAccept, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("DOLAPIKEY")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()

	client := &Client{HTTPClient: srv.Client()}
	_, err := client.FetchContacts(context.Background(), " "+srv.URL+"/api/index.php/ ", "  secret  ")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/index.php/contacts", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestFetchContacts_RequestFailed(t *testing.T) {
	t.Run("body is the detail", func(t *testing.T) {
		srv, _ := directory(t, http.StatusNotFound, "not found")
		_, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")

		var syncErr *Error
		require.True(t, errors.As(err, &syncErr))
		assert.Equal(t, KindRequestFailed, syncErr.Kind)
		assert.Equal(t, http.StatusNotFound, syncErr.Status)
		assert.Equal(t, "not found", err.Error())
	})

	t.Run("empty body mentions status", func(t *testing.T) {
		srv, _ := directory(t, http.StatusInternalServerError, "")
		_, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")

		assert.True(t, errors.Is(err, ErrRequestFailed))
		assert.Contains(t, err.Error(), "500")
	})
}

func TestFetchContacts_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := (&Client{}).FetchContacts(context.Background(), url, "key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetworkOrParse))
	assert.NotEmpty(t, err.Error())
}

func TestFetchContacts_InvalidJSON(t *testing.T) {
	for _, body := range []string{"", "{not json", "<html>oops</html>"} {
		srv, _ := directory(t, http.StatusOK, body)
		_, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")
		assert.True(t, errors.Is(err, ErrNetworkOrParse), "body %q: %v", body, err)
	}
}

func TestFetchContacts_BareArray(t *testing.T) {
	srv, _ := directory(t, http.StatusOK, `[{"firstname":"A","lastname":"B","status":"Active"}]`)

	contacts, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")
	require.NoError(t, err)
	assert.Equal(t, []models.Contact{{FirstName: "A", LastName: "B", Status: "Active"}}, contacts)
}

func TestFetchContacts_DataEnvelope(t *testing.T) {
	body := `{"data":[
		{"firstname":"Grace","lastname":"Hopper","email":"grace@navy.mil","phone_pro":"555-0101","socname":"Navy","status":1},
		{"firstname":"Alan","company":"Bletchley","address":"Park Lane","phone":null}
	]}`
	srv, _ := directory(t, http.StatusOK, body)

	contacts, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	assert.Equal(t, models.Contact{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@navy.mil",
		PhonePro:  "555-0101",
		Company:   "Navy",
		Status:    "1",
	}, contacts[0])

	assert.Equal(t, "Alan", contacts[1].FirstName)
	assert.Equal(t, "Bletchley", contacts[1].Company)
	assert.Equal(t, "Park Lane", contacts[1].Address)
	assert.Equal(t, models.StatusActive, contacts[1].Status, "missing status defaults to active")
}

func TestFetchContacts_EmptyShapes(t *testing.T) {
	for _, body := range []string{`[]`, `{"data":[]}`, `{"data":null}`} {
		srv, _ := directory(t, http.StatusOK, body)
		contacts, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")
		require.NoError(t, err, "body %s", body)
		assert.NotNil(t, contacts)
		assert.Empty(t, contacts)
	}
}

func TestFetchContacts_UnknownShape(t *testing.T) {
	bodies := []string{`{"items":[]}`, `{"data":{"id":1}}`, `"contacts"`, `42`, `null`, `true`}

	t.Run("strict", func(t *testing.T) {
		for _, body := range bodies {
			srv, _ := directory(t, http.StatusOK, body)
			_, err := (&Client{HTTPClient: srv.Client()}).FetchContacts(context.Background(), srv.URL, "key")
			assert.True(t, errors.Is(err, ErrMalformedResponse), "body %s: %v", body, err)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		for _, body := range bodies {
			srv, _ := directory(t, http.StatusOK, body)
			contacts, err := (&Client{HTTPClient: srv.Client(), Lenient: true}).FetchContacts(context.Background(), srv.URL, "key")
			require.NoError(t, err, "body %s", body)
			assert.Empty(t, contacts)
		}
	})
}

func TestTarget(t *testing.T) {
	cfg := config.DirectoryConfig{BaseURL: "https://crm.example.com/api", APIKey: "configured"}

	tests := []struct {
		name            string
		baseURL, apiKey string
		wantURL         string
		wantKey         string
	}{
		{"defaults", "", "", "https://crm.example.com/api", "configured"},
		{"same directory", " https://crm.example.com/api/ ", "", " https://crm.example.com/api/ ", "configured"},
		{"explicit key", "", "mine", "https://crm.example.com/api", "mine"},
		{"other directory keeps configured key out", "https://other.example.com", "", "https://other.example.com", ""},
		{"other directory with its own key", "https://other.example.com", "theirs", "https://other.example.com", "theirs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotKey := Target(cfg, tt.baseURL, tt.apiKey)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantKey, gotKey)
		})
	}
}

func TestNewClient_LenientFromConfig(t *testing.T) {
	srv, _ := directory(t, http.StatusOK, `{"items":[]}`)

	_, err := NewClient(config.DirectoryConfig{}).FetchContacts(context.Background(), srv.URL, "key")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	contacts, err := NewClient(config.DirectoryConfig{Lenient: true}).FetchContacts(context.Background(), srv.URL, "key")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := requestFailed(418, "teapot")
	assert.True(t, errors.Is(err, ErrRequestFailed))
	assert.False(t, errors.Is(err, ErrNetworkOrParse))

	cause := errors.New("boom")
	wrapped := networkOrParse(cause)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "boom", wrapped.Error())

	assert.Equal(t, defaultNetworkErrDetail, networkOrParse(errors.New("")).Error())
}
