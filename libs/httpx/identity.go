package httpx

import "net/http"

// Identity headers are set by the gateway after JWT verification. The
// gateway strips any client-supplied copies before proxying, so services
// behind it can trust these values.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderRole      = "X-Role"
)

const (
	RoleCustomer = "customer"
	RoleDoctor   = "doctor"
	RoleAdmin    = "admin"
)

type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IdentityFromRequest reads the gateway-injected identity. ok is false when
// the request reached the service without passing the authed proxy path.
func IdentityFromRequest(r *http.Request) (Identity, bool) {
	id := Identity{
		UserID: r.Header.Get(HeaderUserID),
		Email:  r.Header.Get(HeaderUserEmail),
		Role:   r.Header.Get(HeaderRole),
	}
	return id, id.UserID != ""
}

// StripIdentityHeaders removes client-supplied identity headers. The gateway
// calls this on every inbound request before injecting its own values.
func StripIdentityHeaders(h http.Header) {
	h.Del(HeaderUserID)
	h.Del(HeaderUserEmail)
	h.Del(HeaderRole)
}
