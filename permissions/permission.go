package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// Permission lists the roles allowed on one route pattern.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

// Allows reports whether role may call the endpoint. An empty role list admits
// any authenticated actor.
func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]int
}

func endpointKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// FindPermissions looks up the entry for a chi route pattern.
func (r *PermissionData) FindPermissions(path, method string) (Permission, bool) {
	idx, ok := r.index[endpointKey(method, path)]
	if !ok {
		return Permission{}, false
	}

	return r.Endpoints[idx], true
}

// Parse decodes and indexes a permissions document. Entries must name a known
// method and an absolute path, and each method and path pair may appear once.
func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, errors.Wrap(err, "decode permissions")
	}

	permissions.index = make(map[string]int, len(permissions.Endpoints))

	for idx, endpoint := range permissions.Endpoints {
		if !strings.HasPrefix(endpoint.Path, "/") {
			return nil, fmt.Errorf("endpoint %d: path %q must start with /", idx, endpoint.Path)
		}

		if !slices.Contains(methods, strings.ToUpper(endpoint.Method)) {
			return nil, fmt.Errorf("endpoint %s: unsupported method %q", endpoint.Path, endpoint.Method)
		}

		key := endpointKey(endpoint.Method, endpoint.Path)
		if _, dup := permissions.index[key]; dup {
			return nil, fmt.Errorf("duplicate endpoint %s", key)
		}

		permissions.index[key] = idx
	}

	return &permissions, nil
}

// Get loads the embedded permissions.json. A broken document stops the process.
func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("loaded embedded permissions")

	return permissions
}
