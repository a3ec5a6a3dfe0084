package http

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/rangda/adapters/store"
	"github.com/layer-3/rangda/service"
)

const testServerName = "chat.example.com"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewAuthService(
		service.Config{
			ServerName:       testServerName,
			NonceTTL:         5 * time.Minute,
			AllowWalletLogin: true,
		},
		store.NewNonceStore(),
		store.NewMemoryAccountStore(),
		store.NewMemoryTokenStore(),
		nil, nil,
	)

	return SetupRouter(svc, testServerName)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestLoginTypesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/_matrix/client/r0/login", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	flows, ok := body["flows"].([]any)
	require.True(t, ok)

	var types []string
	for _, f := range flows {
		types = append(types, f.(map[string]any)["type"].(string))
	}
	assert.Contains(t, types, "m.login.password")
	assert.Contains(t, types, "m.login.solana.signature")
}

func TestWalletLoginOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	sum := sha256.Sum256([]byte{99})
	priv := ed25519.NewKeyFromSeed(sum[:])
	address := base58.Encode(priv.Public().(ed25519.PublicKey))

	// Request a challenge.
	w, body := doJSON(t, router, http.MethodPost, "/_matrix/client/r0/solana/nonce",
		gin.H{"address": address}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	nonce := body["nonce"].(string)
	message := body["message"].(string)
	assert.EqualValues(t, 300, body["expires_in_seconds"])

	// Sign and log in.
	signature := base58.Encode(ed25519.Sign(priv, []byte(message)))
	w, body = doJSON(t, router, http.MethodPost, "/_matrix/client/r0/login", gin.H{
		"type":      "m.login.solana.signature",
		"address":   address,
		"signature": signature,
		"nonce":     nonce,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, "login failed: %v", body)

	token := body["access_token"].(string)
	userID := body["user_id"].(string)
	assert.Regexp(t, `^@[0-9a-f]{64}:chat\.example\.com$`, userID)

	// Authenticated whoami.
	auth := map[string]string{"Authorization": "Bearer " + token}
	w, body = doJSON(t, router, http.MethodGet, "/_matrix/client/r0/account/whoami", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, body["user_id"])

	// Replaying the nonce fails.
	w, body = doJSON(t, router, http.MethodPost, "/_matrix/client/r0/login", gin.H{
		"type":      "m.login.solana.signature",
		"address":   address,
		"signature": signature,
		"nonce":     nonce,
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "M_FORBIDDEN", body["errcode"])

	// Logout, then the token stops working.
	w, _ = doJSON(t, router, http.MethodPost, "/_matrix/client/r0/logout", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/_matrix/client/r0/account/whoami", nil, auth)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChallengeRejectsBadAddress(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/_matrix/client/r0/solana/nonce",
		gin.H{"address": "0NotBase58"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "M_INVALID_PARAM", body["errcode"])
}

func TestLoginMissingWalletFields(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/_matrix/client/r0/login", gin.H{
		"type":    "m.login.solana.signature",
		"address": "someaddress",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "M_INVALID_PARAM", body["errcode"])
}

func TestLoginUnknownType(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/_matrix/client/r0/login",
		gin.H{"type": "m.login.sso"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "M_UNKNOWN", body["errcode"])
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/_matrix/client/r0/account/whoami", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "M_MISSING_TOKEN", body["errcode"])
}
