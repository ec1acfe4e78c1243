package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dimitrije/workspace-invites/internal/logging"
	"github.com/dimitrije/workspace-invites/internal/testutil"
	"github.com/m1z23r/drift/pkg/drift"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		ping   pingFunc
		status int
	}{
		{"up", func(context.Context) error { return nil }, http.StatusOK},
		{"down", func(context.Context) error { return errors.New("no connection") }, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := drift.New()
			app.Get("/health", NewHealthHandler(tc.ping, logging.Discard()).Check)

			rec := testutil.NewHTTPTestClient(t, app).GET("/health", nil)

			testutil.AssertStatus(t, rec, tc.status)
		})
	}
}
