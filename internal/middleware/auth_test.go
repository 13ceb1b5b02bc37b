package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	userID string
	err    error
}

func (s stubVerifier) VerifyToken(string) (string, error) { return s.userID, s.err }

func TestJWTAuth(t *testing.T) {
	var seenUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		header     string
		verifier   stubVerifier
		wantStatus int
		wantUser   string
	}{
		{"no header", "", stubVerifier{}, http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", stubVerifier{}, http.StatusUnauthorized, ""},
		{"rejected token", "Bearer bad", stubVerifier{err: errors.New("nope")}, http.StatusUnauthorized, ""},
		{"valid bearer", "Bearer good", stubVerifier{userID: "user-1"}, http.StatusOK, "user-1"},
		{"bare token also accepted", "good", stubVerifier{userID: "user-2"}, http.StatusOK, "user-2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seenUser = ""
			req := httptest.NewRequest("GET", "/api/history", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			JWTAuth(tc.verifier)(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantUser, seenUser)
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Jane Doe", SanitizeString("  Jane Doe  "))
	assert.Equal(t, "JaneDoe", SanitizeString("Jane\x00Doe"))
	assert.Equal(t, "JaneDoe", SanitizeString("Jane\x1bDoe"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 100, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 500, ValidateLimit(9000))
}

func TestValidatePageSize(t *testing.T) {
	assert.Equal(t, 20, ValidatePageSize(0))
	assert.Equal(t, 100, ValidatePageSize(1000))
	assert.Equal(t, 15, ValidatePageSize(15))
}
