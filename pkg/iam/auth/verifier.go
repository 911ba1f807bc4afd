package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Abraxas-365/gatekeeper/pkg/errx"
	"github.com/Abraxas-365/gatekeeper/pkg/kernel"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie the provider's frontend SDK sets
const SessionCookie = "__session"

// VerifierConfig selects how provider session tokens are checked.
// PublicKeyPEM (RS256) wins over Secret (HS256).
type VerifierConfig struct {
	PublicKeyPEM      string
	Secret            string
	Issuer            string
	AuthorizedParties []string
	Leeway            time.Duration
}

// Verifier turns a provider session token into a kernel.Assertion.
type Verifier struct {
	key     any
	methods []string
	issuer  string
	parties []string
	leeway  time.Duration
}

// NewVerifier builds a verifier from cfg.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	v := &Verifier{
		issuer:  cfg.Issuer,
		parties: cfg.AuthorizedParties,
		leeway:  cfg.Leeway,
	}

	switch {
	case cfg.PublicKeyPEM != "":
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse session token public key: %w", err)
		}
		v.key = key
		v.methods = []string{jwt.SigningMethodRS256.Alg()}
	case cfg.Secret != "":
		v.key = []byte(cfg.Secret)
		v.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, errors.New("session token verifier needs a public key or a secret")
	}

	return v, nil
}

// Verify parses and validates a raw token.
// Any failure is an *errx.VerificationFailure.
func (v *Verifier) Verify(raw string) (*kernel.Assertion, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithJSONNumber(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...); err != nil {
		return nil, &errx.VerificationFailure{Message: verificationMessage(err), Err: err}
	}

	if len(v.parties) > 0 {
		azp, _ := claims["azp"].(string)
		if azp != "" && !slices.Contains(v.parties, azp) {
			return nil, &errx.VerificationFailure{Message: "Invalid authorized party"}
		}
	}

	sub, _ := claims.GetSubject()
	a := &kernel.Assertion{
		SubjectID: kernel.SubjectID(sub),
		Claims:    map[string]any(claims),
	}
	if sid, ok := claims["sid"].(string); ok {
		a.SessionID = kernel.SessionID(sid)
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		a.EmailVerified = verified
	}
	if t, ok := epochClaim(claims["auth_time"]); ok {
		a.AuthTime = &t
	}
	return a, nil
}

// Middleware extracts and verifies the session token. A request without
// a token continues with no assertion; Protect decides what that means.
func (v *Verifier) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFromRequest(c)
		if raw == "" {
			return c.Next()
		}

		a, err := v.Verify(raw)
		if err != nil {
			return err
		}

		c.Locals(kernel.AssertionKey, a)
		c.SetUserContext(kernel.WithAssertion(c.UserContext(), a))
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token)
		}
	}
	return c.Cookies(SessionCookie)
}

func verificationMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "Session token has expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return "Session token is not valid yet"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "Session token has an invalid issuer"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "Session token signature is invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "Session token is malformed"
	default:
		return ""
	}
}

// epochClaim reads a NumericDate-style claim in whole seconds
func epochClaim(v any) (time.Time, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return time.Unix(i, 0), true
		}
		if f, err := n.Float64(); err == nil {
			return time.Unix(int64(f), 0), true
		}
	case float64:
		return time.Unix(int64(n), 0), true
	}
	return time.Time{}, false
}
