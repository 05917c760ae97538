package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"crewport/internal/documents"
	"crewport/internal/profile"
	"crewport/internal/storage"
	"crewport/internal/store"
	"crewport/internal/workflow"
	"crewport/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	crewRepo  store.CrewStore
	staffRepo store.StaffStore
	adminRepo store.AdminStore

	documents *documents.Service
	profiles  *profile.Issuer
	reviews   *workflow.Service

	// files serves the staff resume/photo uploads that bypass the crew
	// document log.
	files storage.FileStore

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	crewRepo store.CrewStore,
	staffRepo store.StaffStore,
	adminRepo store.AdminStore,
	documentSvc *documents.Service,
	profiles *profile.Issuer,
	reviews *workflow.Service,
	files storage.FileStore,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		crewRepo:  crewRepo,
		staffRepo: staffRepo,
		adminRepo: adminRepo,

		documents: documentSvc,
		profiles:  profiles,
		reviews:   reviews,
		files:     files,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register/crew", s.handleGetCrewRegister, http.MethodGet)
	r.HandleFunc("/register/crew", s.handlePostCrewRegister, http.MethodPost)
	r.HandleFunc("/register/staff", s.handleGetStaffRegister, http.MethodGet)
	r.HandleFunc("/register/staff", s.handlePostStaffRegister, http.MethodPost)

	r.HandleFunc("/track", s.handleTrack, http.MethodGet)

	// Tokenized profile. The ref segment is "{id}-{token}"; anything that
	// does not resolve renders the same denial page.
	r.HandleFunc("/my-profile/:ref", s.handleGetProfile, http.MethodGet)
	r.HandleFunc("/my-profile/:ref", s.handlePostProfileUpload, http.MethodPost)
	r.HandleFunc("/my-profile/:ref/documents/:docID", s.handleProfileDocumentDownload, http.MethodGet)

	r.HandleFunc("/admin/login", s.handleGetAdminLogin, http.MethodGet)
	r.HandleFunc("/admin/login", s.handlePostAdminLogin, http.MethodPost)
	r.HandleFunc("/admin/logout", s.handleAdminLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		r.HandleFunc("/admin", s.handleDashboard, http.MethodGet)

		r.HandleFunc("/admin/crew", s.handleCrewList, http.MethodGet)
		r.HandleFunc("/admin/crew/:id", s.handleCrewDetail, http.MethodGet)
		r.HandleFunc("/admin/crew/:id/review", s.handleCrewReview, http.MethodPost)
		r.HandleFunc("/admin/crew/:id/profile-link", s.handleCrewProfileLink, http.MethodPost)
		r.HandleFunc("/admin/crew/:id/delete", s.handleCrewDelete, http.MethodPost)
		r.HandleFunc("/admin/crew/:id/documents/:docID", s.handleAdminDocumentDownload, http.MethodGet)

		r.HandleFunc("/admin/staff", s.handleStaffList, http.MethodGet)
		r.HandleFunc("/admin/staff/:id", s.handleStaffDetail, http.MethodGet)
		r.HandleFunc("/admin/staff/:id/review", s.handleStaffReview, http.MethodPost)
		r.HandleFunc("/admin/staff/:id/files/:kind", s.handleStaffFileDownload, http.MethodGet)

		r.HandleFunc("/admin/export/crew.csv", s.handleCrewExport, http.MethodGet)
		r.HandleFunc("/admin/export/staff.csv", s.handleStaffExport, http.MethodGet)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
		"fmtDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006")
		},
		"fmtDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// profileURL builds the shareable absolute link for a crew member's profile.
func (s *Service) profileURL(m *types.CrewMember) string {
	if !m.HasProfileToken() {
		return ""
	}
	return strings.TrimRight(s.config.BaseURL, "/") + s.profilePath(m)
}

func (s *Service) profilePath(m *types.CrewMember) string {
	if !m.HasProfileToken() {
		return "/track"
	}
	return fmt.Sprintf("/my-profile/%d-%s", m.ID, *m.ProfileToken)
}
