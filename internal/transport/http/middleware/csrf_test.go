package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSRFKey = []byte("0123456789abcdef0123456789abcdef")

func csrfTestHandler() http.Handler {
	return CSRF(CSRFConfig{Key: testCSRFKey, Secure: false}, codeErr)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(csrf.Token(r)))
		}),
	)
}

func TestCSRF_PostWithoutTokenRejected(t *testing.T) {
	h := csrfTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/reset_password/", strings.NewReader("token=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "csrf_failed")
}

func TestCSRF_RoundTrip(t *testing.T) {
	h := csrfTestHandler()

	getRR := httptest.NewRecorder()
	h.ServeHTTP(getRR, httptest.NewRequest(http.MethodGet, "/reset_password/", nil))
	require.Equal(t, http.StatusOK, getRR.Code)

	token := getRR.Body.String()
	require.NotEmpty(t, token)
	cookies := getRR.Result().Cookies()
	require.NotEmpty(t, cookies)

	form := url.Values{"gorilla.csrf.Token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/reset_password/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIsTLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isTLS(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, isTLS(req))
}
