package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"crewport/internal/documents"
	"crewport/internal/profile"
	"crewport/internal/seed"
	"crewport/internal/storage"
	"crewport/internal/store"
	"crewport/internal/workflow"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc    *Service
	crew   *store.MemoryCrewStore
	staff  *store.MemoryStaffStore
	docs   *store.MemoryDocumentStore
	admins *store.MemoryAdminStore
	files  *storage.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	config := &types.Config{
		ServerPort:        8080,
		BaseURL:           "http://portal.test",
		ReadTimeoutSec:    10,
		WriteTimeoutSec:   15,
		MaxUploadBytes:    16 << 20,
		SessionCookieName: "crewport_admin",
		SessionMaxAgeSec:  3600,
		CookieHashKey:     base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("h"), 32)),
		CookieBlockKey:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("b"), 32)),
	}

	crew, staff, docs, admins := store.NewMemoryStores()
	files := storage.NewMemoryStore()

	documentSvc := documents.NewService(logger, files, docs)
	profiles := profile.NewIssuer(logger, crew)
	reviews := workflow.NewService(logger, crew, staff)

	svc, err := New(config, logger, crew, staff, admins, documentSvc, profiles, reviews, files)
	require.NoError(t, err)

	return &testEnv{
		svc:    svc,
		crew:   crew,
		staff:  staff,
		docs:   docs,
		admins: admins,
		files:  files,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.svc.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) registerCrew(t *testing.T, passport string) *types.CrewMember {
	t.Helper()

	m := &types.CrewMember{Name: "Arjun Nair", Rank: "Chief Officer", Passport: passport, Nationality: "Indian"}
	require.NoError(t, e.crew.CreateCrew(context.Background(), m))

	_, err := e.svc.profiles.Issue(context.Background(), m)
	require.NoError(t, err)
	return m
}

type filePart struct {
	field, name, content string
}

func multipartBody(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestProfileDenialIsUniform(t *testing.T) {
	env := newTestEnv(t)
	m := env.registerCrew(t, "Z1234567")

	// Wrong token for a real member, and a real token on a missing member,
	// must be indistinguishable.
	wrongToken := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/my-profile/%d-deadbeef", m.ID), nil))
	missingMember := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/my-profile/999-%s", *m.ProfileToken), nil))

	assert.Equal(t, http.StatusNotFound, wrongToken.Code)
	assert.Equal(t, http.StatusNotFound, missingMember.Code)
	assert.Equal(t, wrongToken.Body.String(), missingMember.Body.String())
}

func TestProfilePageRendersCompletion(t *testing.T) {
	env := newTestEnv(t)
	m := env.registerCrew(t, "Z1234567")

	rec := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/my-profile/%d-%s", m.ID, *m.ProfileToken), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Arjun Nair")
	assert.Contains(t, rec.Body.String(), "Profile completion: 0%")
}

func TestProfileUploadAcceptsValidAndSkipsEmpty(t *testing.T) {
	env := newTestEnv(t)
	m := env.registerCrew(t, "Z1234567")
	ref := fmt.Sprintf("%d-%s", m.ID, *m.ProfileToken)

	body, contentType := multipartBody(t, nil, []filePart{
		{field: "passport", name: "passport.pdf", content: "scan"},
		{field: "stcw_certificates", name: "", content: ""},
	})

	req := httptest.NewRequest(http.MethodPost, "/my-profile/"+ref, body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "1 document uploaded.", loc.Query().Get("notice"))

	stored, err := env.docs.DocumentsByCrew(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestProfileUploadWithNoFilesWarns(t *testing.T) {
	env := newTestEnv(t)
	m := env.registerCrew(t, "Z1234567")
	ref := fmt.Sprintf("%d-%s", m.ID, *m.ProfileToken)

	body, contentType := multipartBody(t, nil, []filePart{
		{field: "passport", name: "", content: ""},
	})

	req := httptest.NewRequest(http.MethodPost, "/my-profile/"+ref, body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, loc.Query().Get("warning"))
}

func TestProfileDocumentDownloadGuardsOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerCrew(t, "Z1234567")
	other := env.registerCrew(t, "Z7654321")

	doc, err := env.svc.documents.Add(context.Background(), owner.ID, types.DocTypePassport,
		documents.Upload{Filename: "passport.pdf", ContentType: "application/pdf", Data: []byte("scan")})
	require.NoError(t, err)

	ownRef := fmt.Sprintf("%d-%s", owner.ID, *owner.ProfileToken)
	rec := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/my-profile/%s/documents/%d", ownRef, doc.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scan", rec.Body.String())

	otherRef := fmt.Sprintf("%d-%s", other.ID, *other.ProfileToken)
	rec = env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/my-profile/%s/documents/%d", otherRef, doc.ID), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCrewRegistrationCreatesMemberWithToken(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"name":              "Arjun Nair",
		"rank":              "Chief Officer",
		"passport":          "z1234567",
		"nationality":       "Indian",
		"date_of_birth":     "1990-04-12",
		"years_experience":  "8",
		"availability_date": "2026-10-01",
		"mobile_number":     "+91 98765 43210",
		"email":             "arjun@example.com",
	}, []filePart{
		{field: "passport_file", name: "passport.pdf", content: "scan"},
	})

	req := httptest.NewRequest(http.MethodPost, "/register/crew", body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/my-profile/"))

	m, err := env.crew.CrewByPassport(context.Background(), "Z1234567")
	require.NoError(t, err, "passport is stored uppercased")
	assert.True(t, m.HasProfileToken())

	stored, err := env.docs.DocumentsByCrew(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, types.DocTypePassport, stored[0].DocumentType)
}

func TestCrewRegistrationRejectsDuplicatePassport(t *testing.T) {
	env := newTestEnv(t)
	env.registerCrew(t, "Z1234567")

	body, contentType := multipartBody(t, map[string]string{
		"name":              "Someone Else",
		"rank":              "Bosun",
		"passport":          "Z1234567",
		"nationality":       "Indian",
		"date_of_birth":     "1992-01-01",
		"availability_date": "2026-10-01",
		"mobile_number":     "+91 11111 11111",
		"email":             "someone@example.com",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/register/crew", body)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestNewRejectsMalformedCookieKeys(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	crew, staff, docs, admins := store.NewMemoryStores()
	files := storage.NewMemoryStore()

	documentSvc := documents.NewService(logger, files, docs)
	profiles := profile.NewIssuer(logger, crew)
	reviews := workflow.NewService(logger, crew, staff)

	config := &types.Config{
		ServerPort:        8080,
		BaseURL:           "http://portal.test",
		SessionCookieName: "crewport_admin",
		CookieHashKey:     "not base64!",
		CookieBlockKey:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("b"), 32)),
	}

	_, err := New(config, logger, crew, staff, admins, documentSvc, profiles, reviews, files)
	require.ErrorContains(t, err, "cookie hash key")

	config.CookieHashKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("h"), 32))
	config.CookieBlockKey = "not base64!"

	_, err = New(config, logger, crew, staff, admins, documentSvc, profiles, reviews, files)
	require.ErrorContains(t, err, "cookie block key")
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminLoginAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, seed.SeedAdmin(context.Background(), env.admins, "ops", "harbour-master-9"))

	form := url.Values{"username": {"ops"}, "password": {"harbour-master-9"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	dashReq := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range cookies {
		dashReq.AddCookie(c)
	}
	dashRec := env.do(dashReq)

	require.Equal(t, http.StatusOK, dashRec.Code)
	assert.Contains(t, dashRec.Body.String(), "Dashboard")
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, seed.SeedAdmin(context.Background(), env.admins, "ops", "harbour-master-9"))

	form := url.Values{"username": {"ops"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.Empty(t, rec.Result().Cookies())
}
