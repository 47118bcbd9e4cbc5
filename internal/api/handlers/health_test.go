package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/api/handlers"
	"github.com/donaldgifford/mws-sync/internal/store/mocks"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Healthz(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		storeErr   error
		natsErr    error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all dependencies up",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "store down",
			storeErr:   errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","failed":{"store":"connection refused"}}`,
		},
		{
			name:       "store and nats down",
			storeErr:   errors.New("connection refused"),
			natsErr:    errors.New("nats connection is down"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody: `{"status":"unavailable","failed":{` +
				`"store":"connection refused","nats":"nats connection is down"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockStore := mocks.NewMockStore(t)
			mockStore.EXPECT().Ping(mock.Anything).Return(tt.storeErr)
			natsErr := tt.natsErr

			h := handlers.NewHealthHandler(
				handlers.Check{Name: "store", Pinger: mockStore},
				handlers.Check{Name: "nats", Pinger: pingFunc(func(context.Context) error { return natsErr })},
			)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			rec := httptest.NewRecorder()

			require.NoError(t, h.Readyz(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
