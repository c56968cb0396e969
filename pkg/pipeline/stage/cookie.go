package stage

import (
	"net/http"
	"time"

	"github.com/rhuss/adminguard/pkg/pipeline"
	"github.com/rhuss/adminguard/pkg/session"
)

// Cookie describes a cookie written by the pipeline. All pipeline cookies
// are host-only, HttpOnly, SameSite=Lax and scoped to "/".
type Cookie struct {
	Name   string
	Secure bool
}

func (c Cookie) read(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// set writes the cookie. A zero expiry makes it a browser-session cookie.
func (c Cookie) set(w http.ResponseWriter, value string, expires time.Time) {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !expires.IsZero() {
		ck.Expires = expires
		ck.MaxAge = int(time.Until(expires).Seconds())
		if ck.MaxAge <= 0 {
			ck.MaxAge = -1
		}
	}
	http.SetCookie(w, ck)
}

// clear tells the browser to drop the cookie.
func (c Cookie) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionBinding stores principals in the session store and keeps the
// session cookie in sync.
type SessionBinding struct {
	Sessions *session.Store
	Cookie   Cookie
}

// bind replaces any existing session with a fresh one holding the
// exchange's principal. A new identifier is issued on every login so that
// a session identifier known before authentication is useless afterwards.
func (b SessionBinding) bind(ex *pipeline.Exchange) {
	if ex.SessionID != "" {
		b.Sessions.Invalidate(ex.SessionID)
	}
	ex.SessionID = b.Sessions.Create(ex.Principal)
	b.Cookie.set(ex.Response, ex.SessionID, time.Time{})
}

// unbind invalidates the exchange's session and clears the cookie.
func (b SessionBinding) unbind(ex *pipeline.Exchange) {
	if ex.SessionID != "" {
		b.Sessions.Invalidate(ex.SessionID)
		ex.SessionID = ""
	}
	b.Cookie.clear(ex.Response)
}
