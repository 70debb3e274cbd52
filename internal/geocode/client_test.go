package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.Client(), zap.NewNop(), server.URL+"/search", "society-waste-test")
}

func TestGeocode_Found(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "123 Main St", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "society-waste-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"18.5204","lon":"73.8567","display_name":"Pune"}]`))
	})

	point, found, err := c.Geocode(context.Background(), "123 Main St")
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 18.5204, point.Lat, 1e-9)
	assert.InDelta(t, 73.8567, point.Lng, 1e-9)
}

func TestGeocode_NoMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, found, err := c.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGeocode_EmptyAddressSkipsRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})

	_, found, err := c.Geocode(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, called)
}

func TestGeocode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"bad json", http.StatusOK, `{not json`},
		{"bad latitude", http.StatusOK, `[{"lat":"north","lon":"73.8"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			})
			_, found, err := c.Geocode(context.Background(), "123 Main St")
			assert.Error(t, err)
			assert.False(t, found)
		})
	}
}

func TestGeocode_RespectsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := c.Geocode(ctx, "123 Main St")
	assert.Error(t, err)
}
