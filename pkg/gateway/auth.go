package gateway

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/apiclient/pkg/debug"
)

// APIKey is one accepted bearer token and the subject it authenticates.
type APIKey struct {
	Key     string
	Subject string
}

// JWTConfig enables HMAC-signed JWT bearer tokens.
type JWTConfig struct {
	// Secret is the shared HMAC key.
	Secret []byte

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string

	// Audience is the expected aud claim. If empty, audience is not validated.
	Audience string

	// SubjectClaim names the claim used as the subject. Default: "sub".
	SubjectClaim string
}

// AuthConfig selects the credentials the gateway accepts. A zero value
// disables authentication.
type AuthConfig struct {
	APIKeys []APIKey
	JWT     *JWTConfig
}

// Enabled reports whether any credential is configured.
func (c AuthConfig) Enabled() bool {
	return len(c.APIKeys) > 0 || c.JWT != nil
}

var errNoMatch = errors.New("invalid API key")

type keyEntry struct {
	hash    [32]byte
	subject string
}

// subjectKeyType is the context key type for the authenticated subject.
type subjectKeyType struct{}

var subjectKey = subjectKeyType{}

// SubjectFromContext returns the authenticated subject, or "".
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey).(string); ok {
		return s
	}
	return ""
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// token. The token is matched against the API keys first, hashed and
// compared in constant time, and then verified as a JWT when cfg.JWT is
// set. With nothing configured the handler is returned unchanged.
func RequireAuth(cfg AuthConfig, next http.Handler) http.Handler {
	if !cfg.Enabled() {
		return next
	}
	entries := make([]keyEntry, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		entries = append(entries, keyEntry{hash: sha256.Sum256([]byte(k.Key)), subject: k.Subject})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="apiclient"`)
			writeJSON(w, http.StatusUnauthorized, CallResponse{Error: "missing bearer token"})
			return
		}

		subject, err := matchKey(entries, token)
		if errors.Is(err, errNoMatch) && cfg.JWT != nil {
			subject, err = verifyJWT(cfg.JWT, token)
		}
		if err != nil {
			debug.Log(debug.Gateway, "authentication failed", "error", err)
			writeJSON(w, http.StatusUnauthorized, CallResponse{Error: err.Error()})
			return
		}

		debug.Log(debug.Gateway, "authenticated", "subject", subject)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
	})
}

func matchKey(entries []keyEntry, token string) (string, error) {
	hash := sha256.Sum256([]byte(token))
	for _, e := range entries {
		if subtle.ConstantTimeCompare(hash[:], e.hash[:]) == 1 {
			return e.subject, nil
		}
	}
	return "", errNoMatch
}

func verifyJWT(cfg *JWTConfig, token string) (string, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}

	parsed, err := jwtlib.Parse(token, func(*jwtlib.Token) (any, error) {
		return cfg.Secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid JWT: %w", err)
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid JWT claims")
	}

	claim := cfg.SubjectClaim
	if claim == "" {
		claim = "sub"
	}
	subject, _ := claims[claim].(string)
	if subject == "" {
		return "", fmt.Errorf("JWT missing %q claim", claim)
	}
	return subject, nil
}
