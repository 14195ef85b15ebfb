package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func TestStatusMemory(t *testing.T) {
	report := NewService(nil, "english").Status(context.Background())

	assert.True(t, report.OK)
	assert.Equal(t, "memory", report.Database)
	assert.Equal(t, "english", report.Language)
}

func TestStatusDatabaseDown(t *testing.T) {
	report := NewService(fakePinger{err: errors.New("down")}, "english").Status(context.Background())

	assert.False(t, report.OK)
	assert.Equal(t, "unreachable", report.Database)
}

func TestHandlerStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{name: "healthy", db: fakePinger{}, want: http.StatusOK},
		{name: "db down", db: fakePinger{err: errors.New("down")}, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", Handler(NewService(tt.db, "english")))

			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.want, resp.Code)
			var report Report
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
			assert.Equal(t, tt.want == http.StatusOK, report.OK)
		})
	}
}
