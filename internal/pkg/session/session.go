package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jwtpkg "github.com/pdfsummarizer/core/internal/pkg/jwt"
)

const (
	DefaultTTL        = 30 * 24 * time.Hour
	DefaultCookieName = "docsum_session"
)

// Store keeps small per-browser values in a signed cookie. Nothing is stored server side.
type Store struct {
	signer *jwtpkg.Signer
	name   string
	ttl    time.Duration
	secure bool
}

func NewStore(signer *jwtpkg.Signer, secure bool) *Store {
	return &Store{signer: signer, name: DefaultCookieName, ttl: DefaultTTL, secure: secure}
}

// Load returns the values carried by the request cookie. A missing, tampered or expired
// cookie yields an empty map.
func (s *Store) Load(c *gin.Context) map[string]string {
	raw, err := c.Cookie(s.name)
	if err != nil || raw == "" {
		return map[string]string{}
	}
	claims, err := s.signer.Parse(raw)
	if err != nil || claims.Values == nil {
		return map[string]string{}
	}
	return claims.Values
}

// Get returns one value, or fallback when unset.
func (s *Store) Get(c *gin.Context, key, fallback string) string {
	if v, ok := s.Load(c)[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Set stores key=value alongside the existing values and re-signs the cookie.
func (s *Store) Set(c *gin.Context, key, value string) error {
	values := s.Load(c)
	values[key] = value
	token, err := s.signer.Sign(values, s.ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}
