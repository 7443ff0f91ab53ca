// Package permissions holds the role table of every protected endpoint, keyed by chi route pattern.
package permissions

import (
	_ "embed"
	"encoding/json"
	"fleet/shared/constant"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var (
	knownRoles = []string{constant.RoleAdmin, constant.RoleStaff, constant.RoleDriver, constant.RoleCustomer}
	methods    = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
)

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the endpoint. Skipped endpoints are public.
func (p Permission) Allows(role string) bool {
	return p.Skip || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
}

func key(method, path string) string {
	return method + " " + path
}

// RoutePattern normalizes a chi pattern to the form used in the table.
// The "/" route of a mounted group resolves with a trailing slash.
func RoutePattern(pattern string) string {
	if len(pattern) > 1 {
		return strings.TrimSuffix(pattern, "/")
	}

	return pattern
}

// Lookup finds the entry of a route pattern. Routes missing from the table report false.
func (r *PermissionData) Lookup(path, method string) (Permission, bool) {
	p, ok := r.index[key(method, path)]

	return p, ok
}

// Load decodes a role table and rejects unknown roles, duplicate routes and entries that
// neither skip auth nor name a role.
func Load(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	permissions.index = make(map[string]Permission, len(permissions.Endpoints))

	for _, endpoint := range permissions.Endpoints {
		k := key(endpoint.Method, endpoint.Path)

		if _, dup := permissions.index[k]; dup {
			return nil, fmt.Errorf("duplicate permission entry %q", k)
		}

		if !slices.Contains(methods, endpoint.Method) {
			return nil, fmt.Errorf("unsupported method in %q", k)
		}

		if !endpoint.Skip && len(endpoint.Permissions) == 0 {
			return nil, fmt.Errorf("permission entry %q names no role", k)
		}

		for _, role := range endpoint.Permissions {
			if !slices.Contains(knownRoles, role) {
				return nil, fmt.Errorf("unknown role %q in %q", role, k)
			}
		}

		permissions.index[k] = endpoint
	}

	return &permissions, nil
}

// Get loads the embedded table. A broken table yields nil, and RBAC then denies every request.
func Get() *PermissionData {
	permissions, err := Load(permissionsData)
	if err != nil {
		log.Error().Err(err).Msg("failed to load embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("loaded embedded permissions")

	return permissions
}
