// Package backend talks to the knowledge-base HTTP backend.
package backend

import "strings"

// JoinURL joins base and endpoint with exactly one "/" between them,
// whatever slashes either side carries.
func JoinURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
