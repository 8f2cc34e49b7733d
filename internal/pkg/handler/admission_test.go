package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sahara-wellness/backend/internal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAdmitter struct {
	err        error
	key        string
	withGlobal bool
	calls      int
}

func (a *testAdmitter) Admit(ctx context.Context, key, today string, withGlobal bool) error {
	a.calls++
	a.key = key
	a.withGlobal = withGlobal
	return a.err
}

func TestNewAdmissionMiddleware(t *testing.T) {
	m, err := NewAdmissionMiddleware(&testAdmitter{})
	assert.NotNil(t, m)
	assert.NoError(t, err)
	m, err = NewAdmissionMiddleware(nil)
	assert.Nil(t, m)
	assert.Error(t, err)
}

func TestAdmission_Passes(t *testing.T) {
	adm := &testAdmitter{}
	code, _ := invokeAdmission(t, adm, "olia-key", true)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, adm.calls)
	assert.Equal(t, "olia-key", adm.key)
	assert.True(t, adm.withGlobal)
}

func TestAdmission_PassesKeyOnly(t *testing.T) {
	adm := &testAdmitter{}
	code, _ := invokeAdmission(t, adm, "olia-key", false)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, adm.withGlobal)
}

func TestAdmission_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "Missing", err: model.ErrMissingKey, wantCode: http.StatusUnauthorized},
		{name: "Invalid", err: model.ErrNoRecord, wantCode: http.StatusForbidden},
		{name: "Quota", err: model.ErrQuotaExceeded, wantCode: http.StatusTooManyRequests},
		{name: "Global", err: model.ErrGlobalLimitReached, wantCode: http.StatusServiceUnavailable},
		{name: "Store", err: model.ErrStoreUnavailable, wantCode: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, handled := invokeAdmission(t, &testAdmitter{err: tt.err}, "kkk", true)
			assert.Equal(t, tt.wantCode, code)
			assert.False(t, handled)
		})
	}
}

func invokeAdmission(t *testing.T, adm Admitter, key string, withGlobal bool) (int, bool) {
	t.Helper()
	m, err := NewAdmissionMiddleware(adm)
	require.NoError(t, err)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if key != "" {
		req.Header.Set(keyHeader, key)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handled := false
	h := m.Handle(withGlobal)(func(c echo.Context) error {
		handled = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, handled
}
