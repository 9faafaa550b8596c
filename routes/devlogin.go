package routes

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/server"
	"github.com/origon-labs/apiutils/server/middleware"
	"github.com/origon-labs/apiutils/util"
	"github.com/origon-labs/apiutils/validation"
)

// devLoginRequest is the optional body of POST /dev-login. An empty body
// falls back to the development defaults.
type devLoginRequest struct {
	Subject string   `json:"subject" binding:"omitempty,max=128"`
	Roles   []string `json:"roles" binding:"omitempty,dive,required,max=64"`
}

// devLoginResponse mirrors an OAuth token response so clients can reuse
// their bearer plumbing.
type devLoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	Subject     string   `json:"subject"`
	Roles       []string `json:"roles"`
	ExpiresAt   string   `json:"expires_at"`
}

// devLoginHandler issues a development token. While ENABLE_LOGIN is false
// the token service fails with a 404-mapped error, so the endpoint's
// existence stays hidden in locked-down environments.
func devLoginHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req devLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			server.RespondWithError(c, apperrors.Validation("Invalid login request body.").WithCause(err))
			return
		}

		subject := util.SanitizeString(req.Subject)
		if verr := validation.New().
			Custom(util.IsSafeString(subject), "subject", "contains disallowed characters").
			Validate(); verr != nil {
			server.RespondWithError(c, verr)
			return
		}

		signed, claims, err := deps.Tokens.Issue(subject, req.Roles)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}

		if deps.AuthMetrics != nil {
			deps.AuthMetrics.RecordIssued(c.Request.Context(), claims.Subject)
		}

		crumb := middleware.NewBreadcrumb(c)
		fields := crumb.Fields()
		fields["subject"] = claims.Subject
		deps.Log.Info("Development login", fields)

		server.RespondOK(c, devLoginResponse{
			AccessToken: signed,
			TokenType:   "bearer",
			Subject:     claims.Subject,
			Roles:       claims.Roles,
			ExpiresAt:   claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		})
	}
}
