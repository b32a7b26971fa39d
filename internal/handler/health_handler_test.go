package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"invoicepipe/internal/handler"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	up := handler.NewHealthHandler(pingFunc(func(context.Context) error { return nil }))
	down := handler.NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("refused") }))

	tests := []struct {
		name       string
		call       func(*gin.Context)
		wantStatus int
	}{
		{"liveness", up.Liveness, http.StatusOK},
		{"liveness with db down", down.Liveness, http.StatusOK},
		{"readiness", up.Readiness, http.StatusOK},
		{"readiness with db down", down.Readiness, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/", http.NoBody)
			tt.call(c)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
