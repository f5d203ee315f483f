package identity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehero/heroctl/internal/models"
)

// fakeProvider is a minimal identity provider for tests.
type fakeProvider struct {
	tokenCalls    int
	signOutCalls  int
	failToken     bool
	rotateRefresh bool
}

func (p *fakeProvider) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/accounts:signIn", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "Secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"INVALID_PASSWORD"}`)
			return
		}
		fmt.Fprintf(w, `{"idToken":"id-token-1","refreshToken":"refresh-1","expiresIn":3600,"email":%q,"displayName":"Test User"}`, body["email"])
	})

	mux.HandleFunc("/v1/accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":"EMAIL_EXISTS"}`)
			return
		}
		fmt.Fprintf(w, `{"idToken":"id-token-1","refreshToken":"refresh-1","expiresIn":3600,"email":%q,"displayName":%q}`, body["email"], body["displayName"])
	})

	mux.HandleFunc("/v1/token", func(w http.ResponseWriter, r *http.Request) {
		p.tokenCalls++
		if p.failToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"INVALID_REFRESH_TOKEN"}`)
			return
		}
		refresh := ""
		if p.rotateRefresh {
			refresh = fmt.Sprintf(`,"refreshToken":"refresh-%d"`, p.tokenCalls+1)
		}
		fmt.Fprintf(w, `{"idToken":"id-token-%d","expiresIn":3600%s}`, p.tokenCalls, refresh)
	})

	mux.HandleFunc("/v1/accounts:signOut", func(w http.ResponseWriter, r *http.Request) {
		p.signOutCalls++
		fmt.Fprint(w, `{}`)
	})

	mux.HandleFunc("/v1/accounts:update", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"Unauthorized"}`)
			return
		}
		fmt.Fprint(w, `{}`)
	})

	return mux
}

func newTestClient(t *testing.T, p *fakeProvider) (*Client, *MemoryCredentials) {
	t.Helper()
	server := httptest.NewServer(p.handler(t))
	t.Cleanup(server.Close)
	creds := NewMemoryCredentials()
	return NewClient(server.URL, creds, 5*time.Second, nil), creds
}

func TestClient_SignIn(t *testing.T) {
	client, creds := newTestClient(t, &fakeProvider{})

	identity, err := client.SignIn(context.Background(), "user@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.Equal(t, "Test User", identity.DisplayName)

	stored, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestClient_SignIn_InvalidPassword(t *testing.T) {
	client, _ := newTestClient(t, &fakeProvider{})

	_, err := client.SignIn(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, client.CurrentIdentity())
}

func TestClient_SignUp_EmailExists(t *testing.T) {
	client, _ := newTestClient(t, &fakeProvider{})

	_, err := client.SignUp(context.Background(), "taken@example.com", "Secret1", "Someone", "")
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestClient_IDToken_CachedUnlessForced(t *testing.T) {
	provider := &fakeProvider{}
	client, _ := newTestClient(t, provider)

	_, err := client.SignIn(context.Background(), "user@example.com", "Secret1")
	require.NoError(t, err)

	// Plain fetch reuses the token minted at sign-in.
	token, err := client.IDToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "id-token-1", token)
	assert.Equal(t, 0, provider.tokenCalls)

	// Forced fetch always exchanges.
	token, err = client.IDToken(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "id-token-1", token)
	assert.Equal(t, 1, provider.tokenCalls)
}

func TestClient_IDToken_NoSession(t *testing.T) {
	client, _ := newTestClient(t, &fakeProvider{})

	_, err := client.IDToken(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClient_IDToken_RefreshRotation(t *testing.T) {
	provider := &fakeProvider{rotateRefresh: true}
	client, creds := newTestClient(t, provider)

	_, err := client.SignIn(context.Background(), "user@example.com", "Secret1")
	require.NoError(t, err)

	_, err = client.IDToken(context.Background(), true)
	require.NoError(t, err)

	stored, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", stored.RefreshToken)
}

func TestClient_Resume_NoCredentials(t *testing.T) {
	client, _ := newTestClient(t, &fakeProvider{})

	var got []*models.Identity
	client.Subscribe(func(id *models.Identity) { got = append(got, id) })

	_, err := client.Resume(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	require.Len(t, got, 1)
	assert.Nil(t, got[0])
}

func TestClient_Resume_RestoresIdentity(t *testing.T) {
	client, creds := newTestClient(t, &fakeProvider{})
	require.NoError(t, creds.Save(&Credentials{
		Email:        "user@example.com",
		DisplayName:  "Test User",
		RefreshToken: "refresh-1",
	}))

	var got []*models.Identity
	client.Subscribe(func(id *models.Identity) { got = append(got, id) })

	identity, err := client.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)
	require.Len(t, got, 1)
	require.NotNil(t, got[0])
	assert.Equal(t, "user@example.com", got[0].Email)
}

func TestClient_SignOut_Idempotent(t *testing.T) {
	provider := &fakeProvider{}
	client, creds := newTestClient(t, provider)

	_, err := client.SignIn(context.Background(), "user@example.com", "Secret1")
	require.NoError(t, err)

	require.NoError(t, client.SignOut(context.Background()))
	assert.Nil(t, client.CurrentIdentity())
	_, err = creds.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)

	// Second sign-out is a no-op and must not call the provider again.
	require.NoError(t, client.SignOut(context.Background()))
	assert.Equal(t, 1, provider.signOutCalls)
}

func TestClient_Unsubscribe(t *testing.T) {
	client, _ := newTestClient(t, &fakeProvider{})

	calls := 0
	cancel := client.Subscribe(func(*models.Identity) { calls++ })
	cancel()

	_, err := client.SignIn(context.Background(), "user@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	claims := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d,"sub":"user@example.com"}`, exp)))
	raw := header + "." + claims + "."

	got, err := TokenExpiry(raw)
	require.NoError(t, err)
	assert.Equal(t, exp, got.Unix())
	assert.Equal(t, "user@example.com", TokenSubject(raw))
}

func TestTokenExpiry_Malformed(t *testing.T) {
	_, err := TokenExpiry("not-a-token")
	assert.Error(t, err)
}
