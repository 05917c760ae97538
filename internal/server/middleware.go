package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyAdminID       contextKey = "admin_id"
	contextKeyAdminUsername contextKey = "admin_username"
)

// adminSession is the securecookie payload for a logged-in admin.
type adminSession struct {
	AdminID  int64
	Username string
	IssuedAt time.Time
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAdmin checks for a valid admin session cookie and adds the admin to
// the request context. Anything invalid redirects to the login page.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.SessionCookieName)
		if err != nil {
			s.logger.WithError(err).Debug("no admin session cookie found")
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		var session adminSession
		if err := s.cookie.Decode(s.config.SessionCookieName, cookie.Value, &session); err != nil {
			s.logger.WithError(err).Warn("failed to decode admin session cookie")
			s.clearAdminSession(w)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		// Re-check the account still exists; a deleted admin loses access
		// immediately rather than at cookie expiry.
		admin, err := s.adminRepo.AdminByID(r.Context(), session.AdminID)
		if err != nil {
			s.logger.WithError(err).WithField("admin_id", session.AdminID).Warn("session admin no longer exists")
			s.clearAdminSession(w)
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyAdminID, admin.ID)
		ctx = context.WithValue(ctx, contextKeyAdminUsername, admin.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) setAdminSession(w http.ResponseWriter, admin *types.Admin) error {
	session := adminSession{
		AdminID:  admin.ID,
		Username: admin.Username,
		IssuedAt: time.Now().UTC(),
	}

	encoded, err := s.cookie.Encode(s.config.SessionCookieName, session)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})
	return nil
}

func (s *Service) clearAdminSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
