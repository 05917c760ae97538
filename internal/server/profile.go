package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"crewport/internal/catalog"
	"crewport/internal/documents"
	"crewport/pkg/types"
)

type profilePageData struct {
	types.BasePageData
	Crew       *types.CrewMember
	Report     *documents.CompletionReport
	ProfileRef string
	Notice     string
	Warning    string
	Error      string
}

// handleGetProfile renders the tokenized profile page. The ref must resolve
// to a crew member with a matching token; every failure mode renders the
// same denial so the URL space leaks nothing.
func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := r.PathValue("ref")

	member, err := s.profiles.Authorize(ctx, ref)
	if err != nil {
		if errors.Is(err, types.ErrProfileAccessDenied) {
			s.renderProfileDenied(w, r)
			return
		}

		s.logger.WithError(err).Error("failed to authorize profile access")
		s.internalServerError(w)
		return
	}

	report, err := s.documents.Completion(ctx, member.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to evaluate profile completion")
		s.internalServerError(w)
		return
	}

	data := &profilePageData{
		BasePageData: types.BasePageData{Title: "My Profile"},
		Crew:         member,
		Report:       report,
		ProfileRef:   ref,
		Notice:       r.URL.Query().Get("notice"),
		Warning:      r.URL.Query().Get("warning"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.profile", data); err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
		return
	}
}

// handlePostProfileUpload accepts document uploads from the profile page.
// Each catalog type has its own file field named after the type; a submit
// where nothing was accepted is a warning, not an error.
func (s *Service) handlePostProfileUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := r.PathValue("ref")

	member, err := s.profiles.Authorize(ctx, ref)
	if err != nil {
		if errors.Is(err, types.ErrProfileAccessDenied) {
			s.renderProfileDenied(w, r)
			return
		}

		s.logger.WithError(err).Error("failed to authorize profile upload")
		s.internalServerError(w)
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.logger.WithError(err).Info("failed to parse profile upload form")
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	accepted := 0
	failed := false
	for _, cat := range catalog.Categories() {
		for _, spec := range cat.Specs {
			uploads := uploadsFromForm(r.MultipartForm, string(spec.Type))
			if len(uploads) == 0 {
				continue
			}

			saved, err := s.documents.AddBatch(ctx, member.ID, spec.Type, uploads)
			if err != nil {
				failed = true
			}
			accepted += len(saved)
		}
	}

	if accepted > 0 {
		if err := s.crewRepo.TouchCrew(ctx, member.ID, time.Now().UTC()); err != nil {
			s.logger.WithError(err).Warn("failed to bump crew updated_at after upload")
		}
	}

	v := url.Values{}
	switch {
	case failed:
		v.Set("error", "Some documents could not be stored. Please try again.")
	case accepted == 0:
		v.Set("warning", "No documents were uploaded. Choose at least one file.")
	case accepted == 1:
		v.Set("notice", "1 document uploaded.")
	default:
		v.Set("notice", fmt.Sprintf("%d documents uploaded.", accepted))
	}

	http.Redirect(w, r, "/my-profile/"+ref+"?"+v.Encode(), http.StatusSeeOther)
}

// handleProfileDocumentDownload streams one of the member's own documents.
func (s *Service) handleProfileDocumentDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref := r.PathValue("ref")

	member, err := s.profiles.Authorize(ctx, ref)
	if err != nil {
		if errors.Is(err, types.ErrProfileAccessDenied) {
			s.renderProfileDenied(w, r)
			return
		}

		s.logger.WithError(err).Error("failed to authorize profile download")
		s.internalServerError(w)
		return
	}

	docID, err := strconv.ParseInt(r.PathValue("docID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.streamDocument(w, r, member.ID, docID)
}

// streamDocument writes a stored document to the response, guarding that the
// record belongs to the given crew member.
func (s *Service) streamDocument(w http.ResponseWriter, r *http.Request, crewID, docID int64) {
	ctx := r.Context()

	doc, err := s.documents.ByID(ctx, docID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			http.NotFound(w, r)
			return
		}

		s.logger.WithError(err).Error("failed to fetch document record")
		s.internalServerError(w)
		return
	}

	if doc.CrewID != crewID {
		http.NotFound(w, r)
		return
	}

	obj, err := s.documents.Open(ctx, doc)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Error("failed to open stored document")
		s.internalServerError(w)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename))
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}

	if _, err := io.Copy(w, obj.Body); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("document stream interrupted")
	}
}

func (s *Service) renderProfileDenied(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)

	data := &types.BasePageData{Title: "Profile Not Available"}
	if err := s.renderTemplate(w, r, "page.profile.denied", data); err != nil {
		s.logger.WithError(err).Error("failed to render profile denied page")
	}
}
