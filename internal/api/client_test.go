package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "employee-17",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSubscribeSendsBearerAndBody(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	var gotBody Subscription

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"sub-1"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "opaque-token")
	res, err := c.Subscribe(context.Background(), Subscription{
		DeviceID:   "laptop-1",
		Platform:   "linux",
		Endpoint:   "http://127.0.0.1:8765/push",
		Categories: []string{"system"},
	})

	require.NoError(t, err)
	assert.Equal(t, "sub-1", res.ID)
	assert.Equal(t, "Bearer opaque-token", gotAuth)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/notifications/subscribe", gotPath)
	assert.Equal(t, "laptop-1", gotBody.DeviceID)
	assert.Equal(t, []string{"system"}, gotBody.Categories)
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "").SendTest(context.Background(), TestRequest{Title: "t"}))
	assert.False(t, hasAuth)
}

func TestFailuresAreTransportErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"server error with envelope", http.StatusInternalServerError, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"boom"}}`, 500, "INTERNAL_ERROR", "boom"},
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Authorization header required"}}`, 401, "UNAUTHORIZED", "Authorization header required"},
		{"not found plain text", http.StatusNotFound, `404 page not found`, 404, "", ""},
		{"ok but success false", http.StatusOK, `{"success":false,"error":{"code":"CONFLICT","message":"already subscribed"}}`, 0, "CONFLICT", "already subscribed"},
		{"ok but not json", http.StatusOK, `<html>`, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, "").SendTest(context.Background(), TestRequest{})
			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantStatus, te.Status)
			assert.Equal(t, tt.wantCode, te.Code)
			assert.Equal(t, tt.wantMessage, te.Message)
			assert.Equal(t, "/notifications/test", te.Path)
		})
	}
}

func TestNetworkErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewClient(url, "").SendTest(context.Background(), TestRequest{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.Status)
	assert.NotNil(t, te.Err)
}

func TestExpiredTokenFailsBeforeRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, signedToken(t, time.Now().Add(-time.Hour)))
	err := c.SendTest(context.Background(), TestRequest{})

	assert.True(t, errors.Is(err, ErrTokenExpired))
	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.False(t, called)
}

func TestValidTokenIsSent(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, tok).SendTest(context.Background(), TestRequest{}))
	assert.Equal(t, "Bearer "+tok, gotAuth)
}

func TestTransportErrorMessage(t *testing.T) {
	err := &TransportError{Method: "POST", Path: "/notifications/subscribe", Status: 503, Message: "maintenance"}
	assert.Equal(t, "POST /notifications/subscribe: HTTP 503: maintenance", err.Error())
}
