package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/origon-labs/apiutils/authctx"
	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/observability"
	"github.com/origon-labs/apiutils/token"
)

// AuthConfig configures the bearer-token authentication middleware.
type AuthConfig struct {
	// Validator validates a raw token string and returns its claims.
	Validator func(raw string) (*token.Claims, error)
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
	// Metrics, when set, records validation outcomes. Nil disables recording.
	Metrics *observability.AuthMetrics
}

// RequireAuth returns a Gin middleware that authenticates every request with
// a bearer token. Header parsing failures are rejected before any token
// decoding happens. Validated claims are stored in both the Gin context and
// the request context for downstream handlers.
func RequireAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		raw, err := token.FromAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanTokenValidation)
		start := time.Now()
		claims, err := cfg.Validator(raw)
		result := validationResult(err)
		cfg.Metrics.RecordValidation(ctx, result, time.Since(start))
		span.SetAttributes(attribute.String(observability.AttrStatus, result))
		if err != nil {
			span.RecordError(err)
			span.End()
			AbortWithError(c, err)
			return
		}
		span.SetAttributes(attribute.String(observability.AttrUserID, claims.UserID()))
		span.End()

		c.Set("user_id", claims.UserID())
		c.Set("roles", claims.Roles)
		c.Request = c.Request.WithContext(authctx.Set(ctx, claims))
		c.Next()
	}
}

// AbortWithError stops the request with the status and body derived from an
// AppError, or a generic 500 envelope for anything else.
func AbortWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse())
}

// validationResult maps a validation outcome to the metric result attribute.
func validationResult(err error) string {
	if err == nil {
		return observability.ResultOK
	}
	if reason := apperrors.ReasonOf(err); reason != "" {
		return string(reason)
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
