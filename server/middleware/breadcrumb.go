package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/origon-labs/apiutils/authctx"
	"github.com/origon-labs/apiutils/token"
)

// HeaderCorrelationID carries a caller-supplied correlation identifier
// across service boundaries.
const HeaderCorrelationID = "X-Correlation-Id"

// Breadcrumb records who did what from where, for audit logging on every
// state-reading or state-changing route.
type Breadcrumb struct {
	AtTime        time.Time `json:"at_time"`
	ByUser        string    `json:"by_user"`
	FromIP        string    `json:"from_ip"`
	CorrelationID string    `json:"correlation_id"`
}

// Correlation ensures every request carries a correlation ID, minting one
// when the caller did not supply it, and echoes it on the response.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("correlation_id", id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

// NewBreadcrumb builds a breadcrumb for the current request. The user comes
// from the authenticated claims when present, otherwise "anonymous".
func NewBreadcrumb(c *gin.Context) Breadcrumb {
	byUser := "anonymous"
	if claims, ok := authctx.Get[*token.Claims](c.Request.Context()); ok {
		byUser = claims.UserID()
	}

	correlationID := c.GetString("correlation_id")
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	return Breadcrumb{
		AtTime:        time.Now().UTC(),
		ByUser:        byUser,
		FromIP:        c.ClientIP(),
		CorrelationID: correlationID,
	}
}

// Fields renders the breadcrumb as structured log fields.
func (b Breadcrumb) Fields() map[string]interface{} {
	return map[string]interface{}{
		"at_time":        b.AtTime.Format(time.RFC3339),
		"by_user":        b.ByUser,
		"from_ip":        b.FromIP,
		"correlation_id": b.CorrelationID,
	}
}
