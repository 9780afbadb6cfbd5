package http

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// SessionHeader selects the session explicitly (API clients).
	SessionHeader = "X-Session-ID"
	// SessionCookie keeps browsers on the same session.
	SessionCookie = "ticketflow_session"
)

var (
	errInvalidSession = errors.New("invalid session id")
	sessionPattern    = regexp.MustCompile(`^[A-Za-z0-9_:-][A-Za-z0-9_.:-]{0,127}$`)
)

// resolveSession picks the session from the header, then the cookie. When
// neither is present a new time-ordered UUID is issued as a cookie.
func resolveSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return checkSession(id)
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return checkSession(c.Value)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id.String(), nil
}

func checkSession(id string) (string, error) {
	if !sessionPattern.MatchString(id) {
		return "", errInvalidSession
	}
	return id, nil
}
