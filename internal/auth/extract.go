package auth

import (
	"net/http"
	"strings"
)

// Cookie names used by the browser-facing endpoints
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// ExtractAccessToken returns the bearer token from the Authorization header,
// falling back to the access_token cookie
func ExtractAccessToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token, true
			}
		}
	}
	return cookieValue(r, AccessCookie)
}

// ExtractRefreshToken reads only the refresh_token cookie
func ExtractRefreshToken(r *http.Request) (string, bool) {
	return cookieValue(r, RefreshCookie)
}

func cookieValue(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
