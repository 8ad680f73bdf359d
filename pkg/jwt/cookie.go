package jwt

import (
	"net/http"
	"time"
)

// SessionCookie carries a token for browser clients. It is not readable
// from scripts. secure is off only for plain-HTTP local runs.
func SessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie tells the browser to drop name.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	c := SessionCookie(name, "", time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}
