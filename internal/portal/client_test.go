package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_FullModInfo(t *testing.T) {
	// Arrange: mock mod portal
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/mods/Krastorio2/full":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"Krastorio2","releases":[
				{"version":"1.0.0","released_at":"2020-10-20T12:00:00.123000Z"},
				{"version":"1.1.0","released_at":"2021-02-01T08:30:00.000000Z"}]}`))
		case "/api/mods/Broken/full":
			w.Write([]byte(`{"name":`))
		case "/api/mods/BadDate/full":
			w.Write([]byte(`{"name":"BadDate","releases":[{"version":"1.0.0","released_at":"soon"}]}`))
		case "/api/mods/Private/full":
			w.WriteHeader(http.StatusForbidden)
		case "/api/mods/Flaky/full":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(Config{PortalURL: server.URL})

	tests := []struct {
		name     string
		mod      string
		wantKind Kind
		wantErr  error
	}{
		{"found", "Krastorio2", KindOK, nil},
		{"not found", "Missing", KindNotFound, ErrNotFound},
		{"truncated json", "Broken", KindMalformed, ErrMalformed},
		{"bad release date", "BadDate", KindMalformed, ErrMalformed},
		{"forbidden", "Private", KindAuthError, ErrUnauthorized},
		{"server error", "Flaky", KindFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := client.FullModInfo(context.Background(), Token{}, tt.mod)

			// Assert
			if got.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v (err %v)", got.Kind, tt.wantKind, got.Err)
			}
			if tt.wantErr != nil && !errors.Is(got.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", got.Err, tt.wantErr)
			}
			if got.Kind == KindOK && got.Info == nil {
				t.Error("Info is nil for KindOK")
			}
			if got.Kind != KindOK && got.Err == nil {
				t.Error("Err is nil for non-OK result")
			}
		})
	}
}

func TestClient_FullModInfo_Decodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"releases":[{"version":"0.2.1","released_at":"2019-03-03T16:20:43.498000Z"}]}`))
	}))
	defer server.Close()

	got := NewClient(Config{PortalURL: server.URL}).FullModInfo(context.Background(), Token{}, "rso-mod")

	if got.Kind != KindOK {
		t.Fatalf("Kind = %v, want ok (err %v)", got.Kind, got.Err)
	}
	if got.Info.Name != "rso-mod" {
		t.Errorf("Name = %q, want requested name", got.Info.Name)
	}
	if len(got.Info.Releases) != 1 {
		t.Fatalf("got %d releases, want 1", len(got.Info.Releases))
	}
	want := time.Date(2019, 3, 3, 16, 20, 43, 498000000, time.UTC)
	if rel := got.Info.Releases[0]; rel.Version != "0.2.1" || !rel.ReleasedAt.Equal(want) {
		t.Errorf("release = %+v, want 0.2.1 at %v", rel, want)
	}
}

func TestClient_FullModInfo_SendsToken(t *testing.T) {
	var gotUser, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.URL.Query().Get("username")
		gotToken = r.URL.Query().Get("token")
		w.Write([]byte(`{"name":"x","releases":[]}`))
	}))
	defer server.Close()

	NewClient(Config{PortalURL: server.URL}).FullModInfo(context.Background(), Token{Username: "alice", Token: "t0k"}, "x")

	if gotUser != "alice" || gotToken != "t0k" {
		t.Errorf("query = (%q, %q), want (alice, t0k)", gotUser, gotToken)
	}
}

func TestClient_FullModInfo_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	got := NewClient(Config{PortalURL: server.URL}).FullModInfo(ctx, Token{}, "slow")

	if got.Kind != KindFailed {
		t.Errorf("Kind = %v, want failed", got.Kind)
	}
	if !errors.Is(got.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want deadline exceeded", got.Err)
	}
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api-login" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		r.ParseForm()
		switch {
		case r.PostForm.Get("api_version") != "4":
			w.WriteHeader(http.StatusBadRequest)
		case r.PostForm.Get("username") == "alice" && r.PostForm.Get("password") == "secret":
			w.Write([]byte(`{"token":"abc123","username":"alice"}`))
		case r.PostForm.Get("username") == "empty":
			w.Write([]byte(`{"username":"empty"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"login-failed","message":"Invalid username or password"}`))
		}
	}))
	defer server.Close()

	client := NewClient(Config{AuthURL: server.URL})

	tests := []struct {
		name      string
		user      string
		password  string
		wantToken string
		wantErr   error
	}{
		{"valid", "alice", "secret", "abc123", nil},
		{"wrong password", "alice", "nope", "", ErrUnauthorized},
		{"no token in response", "empty", "x", "", ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.Login(context.Background(), tt.user, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if got.Token != tt.wantToken || got.Username != tt.user {
				t.Errorf("Login() = %+v, want token %q for %q", got, tt.wantToken, tt.user)
			}
		})
	}
}

func TestClient_VerifyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/check" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.URL.Query().Get("token") {
		case "good":
			w.Write([]byte(`true`))
		case "stale":
			w.Write([]byte(`false`))
		case "revoked":
			w.WriteHeader(http.StatusUnauthorized)
		case "garbage":
			w.Write([]byte(`{"valid":`))
		case "null":
			w.Write([]byte(`null`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := NewClient(Config{AuthURL: server.URL, VerifyPath: "check"})

	tests := []struct {
		token     string
		wantValid bool
		wantErr   bool
	}{
		{"good", true, false},
		{"stale", false, false},
		{"revoked", false, false},
		{"garbage", false, true},
		{"null", false, true},
		{"other", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			valid, err := client.VerifyToken(context.Background(), Token{Username: "alice", Token: tt.token})
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if valid != tt.wantValid {
				t.Errorf("VerifyToken() = %v, want %v", valid, tt.wantValid)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{PortalURL: "https://example.test/"})

	if c.portalURL != "https://example.test" {
		t.Errorf("portalURL = %q, want trailing slash trimmed", c.portalURL)
	}
	if c.authURL != DefaultAuthURL {
		t.Errorf("authURL = %q, want %q", c.authURL, DefaultAuthURL)
	}
	if c.verifyPath != DefaultVerifyPath {
		t.Errorf("verifyPath = %q, want %q", c.verifyPath, DefaultVerifyPath)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.client.Timeout, DefaultTimeout)
	}
}
