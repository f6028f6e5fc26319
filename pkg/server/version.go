package server

import (
	"net/http"
	"regexp"
	"strings"
)

// DefaultAPIVersion is served when the client does not ask for one.
const DefaultAPIVersion = "v1"

var (
	supportedAPIVersions = map[string]bool{"v1": true}

	vendorMediaType = regexp.MustCompile(`application/vnd\.nvidia\.clint\.(v[0-9]+)\+(json|yaml)`)
)

// negotiateAPIVersion reads the version from a vendor media type such as
// application/vnd.nvidia.clint.v1+json, falling back to the default.
func negotiateAPIVersion(r *http.Request) string {
	m := vendorMediaType.FindStringSubmatch(strings.ToLower(r.Header.Get("Accept")))
	if m == nil || !isValidAPIVersion(m[1]) {
		return DefaultAPIVersion
	}
	return m[1]
}

func isValidAPIVersion(v string) bool {
	return supportedAPIVersions[v]
}
