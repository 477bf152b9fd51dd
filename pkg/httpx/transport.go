package httpx

import (
	"net/http"
	"strings"
)

// IsSecureTransport reports whether r arrived over TLS. When trustProxy is
// set, a TLS-terminating proxy may vouch for it with X-Forwarded-Proto.
func IsSecureTransport(r *http.Request, trustProxy bool) bool {
	if r.TLS != nil {
		return true
	}
	if !trustProxy {
		return false
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}
