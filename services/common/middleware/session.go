package middleware

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kadekedwin/billforge/services/common/auth"
)

const (
	DefaultSessionCookie = "token"
	UserContextKey       = "userID"
)

// GateConfig describes which page routes the session gate treats as public-only
// and which requests it ignores entirely.
type GateConfig struct {
	CookieName  string
	LoginPath   string
	LandingPath string
	// PublicOnly routes are for signed-out visitors; signed-in visitors are sent to LandingPath.
	PublicOnly []string
	// SkipPrefixes are never gated (API, static bundles, health checks).
	SkipPrefixes []string
	// Validator is optional. Without it any non-empty cookie counts as a session.
	Validator *auth.TokenValidator
}

// DefaultGateConfig returns the routing used by the billing UI.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		CookieName:   DefaultSessionCookie,
		LoginPath:    "/login",
		LandingPath:  "/sale",
		PublicOnly:   []string{"/login", "/register", "/forgot-password"},
		SkipPrefixes: []string{"/api", "/static", "/assets", "/_next", "/health", "/favicon.ico"},
	}
}

// SessionGate redirects page requests based on session presence.
type SessionGate struct {
	cfg GateConfig
}

func NewSessionGate(cfg GateConfig) *SessionGate {
	def := DefaultGateConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = def.LoginPath
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = def.LandingPath
	}
	return &SessionGate{cfg: cfg}
}

// Decide returns the redirect target for a request to p, or "" to let it through.
func (g *SessionGate) Decide(p string, hasSession bool) string {
	if g.skipped(p) {
		return ""
	}
	publicOnly := g.publicOnly(p)
	switch {
	case !hasSession && !publicOnly:
		return g.cfg.LoginPath
	case hasSession && publicOnly:
		return g.cfg.LandingPath
	default:
		return ""
	}
}

// HasSession reports whether the request carries a usable session cookie.
func (g *SessionGate) HasSession(r *http.Request) bool {
	cookie, err := r.Cookie(g.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	if g.cfg.Validator == nil {
		return true
	}
	return g.cfg.Validator.Valid(cookie.Value)
}

// Handler returns the gin middleware form of the gate.
func (g *SessionGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if target := g.Decide(c.Request.URL.Path, g.HasSession(c.Request)); target != "" {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (g *SessionGate) skipped(p string) bool {
	for _, prefix := range g.cfg.SkipPrefixes {
		if underPrefix(p, prefix) {
			return true
		}
	}
	// Any file with an extension is treated as a static asset.
	return path.Ext(p) != ""
}

func (g *SessionGate) publicOnly(p string) bool {
	for _, route := range g.cfg.PublicOnly {
		if underPrefix(p, route) {
			return true
		}
	}
	return false
}

// underPrefix matches prefix on a path segment boundary, so "/api" covers
// "/api/x" but not "/apiary".
func underPrefix(p, prefix string) bool {
	if !strings.HasPrefix(p, prefix) {
		return false
	}
	rest := p[len(prefix):]
	return rest == "" || rest[0] == '/' || strings.HasSuffix(prefix, "/")
}

// SessionIdentity resolves the caller's identity from X-User-ID (set by a
// gateway) or from the session cookie, and aborts with 401 when neither is present.
func SessionIdentity(cookieName string, validator *auth.TokenValidator) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			if v, err := c.Cookie(cookieName); err == nil && v != "" {
				userID = v
				if validator != nil {
					claims, err := validator.ParseAndValidateToken(v)
					if err != nil {
						userID = ""
					} else if sub := auth.Subject(claims); sub != "" {
						userID = sub
					}
				}
			}
		}

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: missing session"})
			return
		}

		c.Set(UserContextKey, userID)
		c.Next()
	}
}

// GetUserID returns the identity stored by SessionIdentity.
func GetUserID(c *gin.Context) (string, error) {
	val, exists := c.Get(UserContextKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		return "", errors.New("user ID has invalid type in context")
	}
	return userID, nil
}
