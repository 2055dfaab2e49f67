package respond

import (
	"regexp"
)

var (
	// user:password@ inside any URL
	urlCredentialsPattern = regexp.MustCompile(`://([^:/@\s]+):([^@/\s]+)@`)

	// token-like query parameters
	secretParamPattern = regexp.MustCompile(`(?i)([?&](?:token|access_token|api_key|apikey|key|sig|signature|password)=)[^&\s"]+`)
)

// SanitizeError returns the error text with credentials masked.
// Requested URLs are user input and may embed secrets.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = urlCredentialsPattern.ReplaceAllString(msg, "://$1:****@")
	msg = secretParamPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
