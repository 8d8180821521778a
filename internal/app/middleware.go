package app

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/unrolled/secure"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian-erp/internal/lifecycle"
	"github.com/meridian-erp/meridian-erp/internal/observability"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
}

// MiddlewareStack installs the outer middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	stack := []func(http.Handler) http.Handler{
		secureMiddleware.Handler,
	}
	if cfg.Metrics != nil {
		stack = append(stack, cfg.Metrics.Middleware)
	}
	return stack
}

// APIKeyMiddleware authenticates the calling gateway by comparing X-Api-Key
// against the configured bcrypt hash. The first successful comparison is
// cached so steady-state requests only pay a constant-time equality check.
type APIKeyMiddleware struct {
	hash string

	mu       sync.RWMutex
	knownKey string
}

// NewAPIKeyMiddleware constructs the gate for the given bcrypt hash.
func NewAPIKeyMiddleware(hash string) *APIKeyMiddleware {
	return &APIKeyMiddleware{hash: hash}
}

// Handler rejects requests lacking a valid X-Api-Key.
func (m *APIKeyMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Api-Key")
		if key == "" || !m.valid(key) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *APIKeyMiddleware) valid(key string) bool {
	m.mu.RLock()
	known := m.knownKey
	m.mu.RUnlock()
	if known != "" {
		return subtle.ConstantTimeCompare([]byte(known), []byte(key)) == 1
	}
	if bcrypt.CompareHashAndPassword([]byte(m.hash), []byte(key)) != nil {
		return false
	}
	m.mu.Lock()
	m.knownKey = key
	m.mu.Unlock()
	return true
}

// ActorMiddleware resolves the acting user from the gateway-supplied headers
// X-Actor-Id, X-Actor-Role and X-Actor-Owner. The core trusts the gateway
// for identity and ownership; it still enforces role policy itself.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("X-Actor-Id"), 10, 64)
		role := r.Header.Get("X-Actor-Role")
		if err != nil || id <= 0 || role == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "actor headers missing or malformed")
			return
		}
		owner := r.Header.Get("X-Actor-Owner") == "true" || r.Header.Get("X-Actor-Owner") == "1"
		actor := shared.Actor{ID: id, Role: lifecycle.Role(role), Owner: owner}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}
