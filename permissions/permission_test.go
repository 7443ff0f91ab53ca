package permissions_test

import (
	"fleet/permissions"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)
	assert.NotEmpty(t, data.Endpoints)
}

func TestLookup(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantFound bool
		wantRoles []string
		wantSkip  bool
	}{
		{
			name:      "only staff confirm payments",
			path:      "/v1/bookings/{id}/confirm",
			method:    http.MethodPost,
			wantFound: true,
			wantRoles: []string{"staff", "admin"},
		},
		{
			name:      "customers may cancel",
			path:      "/v1/bookings/{id}/cancel",
			method:    http.MethodPost,
			wantFound: true,
			wantRoles: []string{"customer", "staff", "admin"},
		},
		{
			name:      "availability is public",
			path:      "/v1/cars/{id}/availability",
			method:    http.MethodGet,
			wantFound: true,
			wantSkip:  true,
		},
		{
			name:      "sweep is admin only",
			path:      "/v1/admin/reclaim",
			method:    http.MethodPost,
			wantFound: true,
			wantRoles: []string{"admin"},
		},
		{
			name:   "method is part of the key",
			path:   "/v1/admin/reclaim",
			method: http.MethodGet,
		},
		{
			name:   "unknown endpoint",
			path:   "/v1/unknown",
			method: http.MethodGet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := data.Lookup(tt.path, tt.method)

			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantSkip, got.Skip)
			assert.Equal(t, tt.wantRoles, got.Permissions)
		})
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "malformed json",
			data:    `{"endpoints": [`,
			wantErr: "failed to decode permissions",
		},
		{
			name:    "unknown role",
			data:    `{"endpoints": [{"path": "/v1/bookings", "method": "GET", "permissions": ["manager"]}]}`,
			wantErr: `unknown role "manager"`,
		},
		{
			name: "duplicate route",
			data: `{"endpoints": [
				{"path": "/v1/fees", "method": "GET", "skip": true},
				{"path": "/v1/fees", "method": "GET", "permissions": ["admin"]}
			]}`,
			wantErr: "duplicate permission entry",
		},
		{
			name:    "entry without roles",
			data:    `{"endpoints": [{"path": "/v1/bookings", "method": "GET"}]}`,
			wantErr: "names no role",
		},
		{
			name:    "unsupported method",
			data:    `{"endpoints": [{"path": "/v1/fees", "method": "FETCH", "skip": true}]}`,
			wantErr: "unsupported method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := permissions.Load([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllows(t *testing.T) {
	staffOnly := permissions.Permission{Permissions: []string{"staff"}}

	assert.True(t, staffOnly.Allows("staff"))
	assert.False(t, staffOnly.Allows("customer"))
	assert.False(t, permissions.Permission{}.Allows("driver"))
	assert.True(t, permissions.Permission{Skip: true}.Allows(""))
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, "/v1/bookings", permissions.RoutePattern("/v1/bookings/"))
	assert.Equal(t, "/v1/bookings/{id}", permissions.RoutePattern("/v1/bookings/{id}"))
	assert.Equal(t, "/", permissions.RoutePattern("/"))
}
