package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/vaporhouse/api/internal/platform/httpx"
)

var (
	// ErrTokenExpired signals that the provided bearer credential has expired.
	ErrTokenExpired = errors.New("auth: bearer token expired")
	// ErrTokenInvalid signals that the provided bearer credential is invalid for other reasons.
	ErrTokenInvalid = errors.New("auth: bearer token invalid")
)

// TokenVerifier verifies bearer credentials issued by the identity provider.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier validates HMAC-signed JWT bearer credentials.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// JWTVerifierConfig configures issuer/audience expectations for token checks.
type JWTVerifierConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// NewJWTVerifier constructs a verifier for the shared-secret credential scheme.
func NewJWTVerifier(cfg JWTVerifierConfig) (*JWTVerifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	return &JWTVerifier{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
	}, nil
}

type bearerClaims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// VerifyToken parses and validates the credential, returning the identity it carries.
func (v *JWTVerifier) VerifyToken(_ context.Context, token string) (*Identity, error) {
	if v == nil {
		return nil, ErrTokenInvalid
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := &bearerClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	if v.issuer != "" && !strings.EqualFold(claims.Issuer, v.issuer) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}
	if v.audience != "" {
		matched := false
		for _, aud := range claims.Audience {
			if strings.EqualFold(aud, v.audience) {
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: audience mismatch", ErrTokenInvalid)
		}
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject missing", ErrTokenInvalid)
	}

	roles := make([]string, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			roles = append(roles, role)
		}
	}

	return &Identity{
		Subject: subject,
		Email:   strings.TrimSpace(claims.Email),
		Roles:   roles,
	}, nil
}

// Authenticator wires bearer verification into HTTP middleware.
type Authenticator struct {
	verifier TokenVerifier
}

// NewAuthenticator constructs an Authenticator for middleware composition.
func NewAuthenticator(verifier TokenVerifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// RequireAuth rejects requests lacking a valid bearer credential.
func (a *Authenticator) RequireAuth() func(http.Handler) http.Handler {
	return a.middleware(true)
}

// OptionalAuth attaches identity when a valid credential is present and lets
// anonymous requests through untouched. Guest checkout relies on this mode.
func (a *Authenticator) OptionalAuth() func(http.Handler) http.Handler {
	return a.middleware(false)
}

func (a *Authenticator) middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				if required {
					httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if a == nil || a.verifier == nil {
				if required {
					httpx.WriteError(ctx, w, httpx.NewError("auth_unavailable", "authentication is unavailable", http.StatusServiceUnavailable))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			identity, err := a.verifier.VerifyToken(ctx, token)
			if err != nil {
				if !required {
					// An invalid token on an optional route degrades to guest.
					next.ServeHTTP(w, r)
					return
				}
				switch {
				case errors.Is(err, ErrTokenExpired):
					httpx.WriteError(ctx, w, httpx.NewError("token_expired", "bearer token expired", http.StatusUnauthorized))
				default:
					httpx.WriteError(ctx, w, httpx.NewError("token_invalid", "bearer token invalid", http.StatusUnauthorized))
				}
				return
			}

			ctx = WithIdentity(ctx, identity)
			ctx = WithBearerToken(ctx, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
