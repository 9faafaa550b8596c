// Package validation collects request validation failures into a single
// field-detailed error.
//
// Structural checks on request bodies belong in gin binding tags; the
// Validator here covers the semantic checks binding tags cannot express:
//
//	v := validation.New().
//	    Required("subject", subject).
//	    Custom(util.IsSafeString(subject), "subject", "contains disallowed characters")
//	if appErr := v.Validate(); appErr != nil {
//	    server.RespondWithError(c, appErr)
//	}
package validation
