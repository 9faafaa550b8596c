package token

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/origon-labs/apiutils/config"
	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/logger"
)

// Defaults for development-issued tokens when the caller supplies none.
const (
	DefaultDevSubject = "dev-user-1"
	DefaultDevRole    = "developer"
)

// expiryLeeway is the clock-skew tolerance applied to expiration checks.
const expiryLeeway = 30 * time.Second

// Service validates and issues bearer tokens. It holds no per-request
// state; every call is a pure function of its inputs and the read-only
// Config snapshot, so a single Service is safe for concurrent use.
type Service struct {
	cfg *config.Config
	log *logger.Logger
}

// NewService creates a token service bound to the given configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg: cfg,
		log: logger.WithComponent("token"),
	}
}

// Validate decodes and checks a raw bearer token. On success it returns the
// claims; on failure, a TokenValidation error whose reason is the only
// externally observable detail.
//
// With a configured (non-default) secret the signature is verified using
// the configured algorithm. With the default secret, which config.New only
// permits in development, the token is decoded without signature
// verification and a warning is logged.
func (s *Service) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, apperrors.TokenValidation(apperrors.ReasonMalformed)
	}

	claims := &Claims{}

	if s.cfg.JWTSecretIsDefault() {
		s.log.Warn("Validating token WITHOUT signature verification; JWT_SECRET is the development default")
		if _, _, err := gojwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return nil, apperrors.TokenValidation(apperrors.ReasonMalformed).WithCause(err)
		}
		if err := s.checkClaims(claims); err != nil {
			return nil, err
		}
		claims.Raw = raw
		return claims, nil
	}

	parsed, err := gojwt.ParseWithClaims(raw, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{s.cfg.JWTSigningAlgorithm()}),
		gojwt.WithIssuer(s.cfg.JWTIssuerClaim()),
		gojwt.WithAudience(s.cfg.JWTAudienceClaim()),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(expiryLeeway),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, apperrors.TokenValidation(apperrors.ReasonMalformed)
	}

	claims.Raw = raw
	return claims, nil
}

// Issue mints a signed token for the development login endpoint. It fails
// with a FeatureDisabled error while ENABLE_LOGIN is false. Subject and
// roles are embedded verbatim; empty inputs fall back to the development
// defaults.
func (s *Service) Issue(subject string, roles []string) (string, *Claims, error) {
	if !s.cfg.LoginEnabled() {
		return "", nil, apperrors.FeatureDisabled("dev-login")
	}

	if subject == "" {
		subject = DefaultDevSubject
	}
	if len(roles) == 0 {
		roles = []string{DefaultDevRole}
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    s.cfg.JWTIssuerClaim(),
			Audience:  gojwt.ClaimStrings{s.cfg.JWTAudienceClaim()},
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.JWTTTL())),
		},
		Roles: roles,
	}

	tok := gojwt.NewWithClaims(s.signingMethod(), claims)
	signed, err := tok.SignedString([]byte(s.cfg.JWTSigningSecret()))
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}

	s.log.Info("Development token issued", logger.Fields(
		logger.FieldUserID, subject,
		"roles", roles,
	))

	claims.Raw = signed
	return signed, claims, nil
}

// ValidatorFunc bridges the typed service to middleware that only knows
// about a validate-string function.
func (s *Service) ValidatorFunc() func(string) (*Claims, error) {
	return s.Validate
}

// keyFunc supplies the HMAC verification key after checking the signing
// method matches the configured algorithm.
func (s *Service) keyFunc(t *gojwt.Token) (interface{}, error) {
	if t.Method.Alg() != s.cfg.JWTSigningAlgorithm() {
		return nil, apperrors.TokenValidation(apperrors.ReasonBadSignature)
	}
	return []byte(s.cfg.JWTSigningSecret()), nil
}

// signingMethod maps the configured algorithm name to a golang-jwt method.
// config.New already rejected anything outside the HMAC family.
func (s *Service) signingMethod() gojwt.SigningMethod {
	switch s.cfg.JWTSigningAlgorithm() {
	case "HS384":
		return gojwt.SigningMethodHS384
	case "HS512":
		return gojwt.SigningMethodHS512
	default:
		return gojwt.SigningMethodHS256
	}
}

// checkClaims enforces issuer, audience, expiry, and not-before on the
// unverified development path, mirroring the checks the verified path gets
// from the parser options.
func (s *Service) checkClaims(c *Claims) error {
	now := time.Now()
	if c.ExpiresAt == nil {
		return apperrors.TokenValidation(apperrors.ReasonMalformed)
	}
	if now.After(c.ExpiresAt.Time.Add(expiryLeeway)) {
		return apperrors.TokenValidation(apperrors.ReasonExpired)
	}
	if c.NotBefore != nil && now.Add(expiryLeeway).Before(c.NotBefore.Time) {
		return apperrors.TokenValidation(apperrors.ReasonExpired)
	}
	if c.Issuer != s.cfg.JWTIssuerClaim() {
		return apperrors.TokenValidation(apperrors.ReasonIssuerMismatch)
	}
	audienceOK := false
	for _, aud := range c.Audience {
		if aud == s.cfg.JWTAudienceClaim() {
			audienceOK = true
			break
		}
	}
	if !audienceOK {
		return apperrors.TokenValidation(apperrors.ReasonAudienceMismatch)
	}
	return nil
}

// classify maps golang-jwt parse errors onto the coarse reason codes. The
// underlying error travels as the cause and is never sent to clients.
func classify(err error) error {
	var reason apperrors.Reason
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired), errors.Is(err, gojwt.ErrTokenNotValidYet):
		reason = apperrors.ReasonExpired
	case errors.Is(err, gojwt.ErrTokenInvalidIssuer):
		reason = apperrors.ReasonIssuerMismatch
	case errors.Is(err, gojwt.ErrTokenInvalidAudience):
		reason = apperrors.ReasonAudienceMismatch
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		reason = apperrors.ReasonBadSignature
	default:
		reason = apperrors.ReasonMalformed
	}
	return apperrors.TokenValidation(reason).WithCause(err)
}
