package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/twilio/twilio-go/client"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// TwilioSignature rejects webhook requests that were not signed with
// authToken. Requests pass through unchecked when authToken is empty.
func TwilioSignature(authToken string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if authToken == "" {
			return next
		}
		validator := client.NewRequestValidator(authToken)

		return func(c echo.Context) error {
			req := c.Request()
			if err := req.ParseForm(); err != nil {
				return c.String(http.StatusBadRequest, "failed to parse form data")
			}

			params := make(map[string]string, len(req.PostForm))
			for key, values := range req.PostForm {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}

			requestURL := "https://" + req.Host + req.URL.RequestURI()
			if !validator.Validate(requestURL, params, req.Header.Get(twilioSignatureHeader)) {
				logger.WarnContext(req.Context(), "rejected unsigned webhook", "path", req.URL.Path)
				return c.String(http.StatusUnauthorized, "invalid Twilio signature")
			}
			return next(c)
		}
	}
}
