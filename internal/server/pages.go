package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"crewport/internal/documents"
	"crewport/pkg/types"
)

// trackPageData needs the completion report, so it lives here rather than in
// pkg/types.
type trackPageData struct {
	types.BasePageData
	Passport string
	Crew     *types.CrewMember
	Report   *documents.CompletionReport
	Error    string
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Maritime Crew & Staff Recruitment"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleTrack lets a registrant check their review status by passport number
// without needing their profile link.
func (s *Service) handleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	passport := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("passport")))

	data := &trackPageData{
		BasePageData: types.BasePageData{Title: "Track Application"},
		Passport:     passport,
	}

	if passport != "" {
		crew, err := s.crewRepo.CrewByPassport(ctx, passport)
		switch {
		case errors.Is(err, types.ErrCrewNotFound):
			data.Error = "No application found for that passport number."
		case err != nil:
			s.logger.WithError(err).Error("failed to look up crew by passport")
			s.internalServerError(w)
			return
		default:
			data.Crew = crew

			report, err := s.documents.Completion(ctx, crew.ID)
			if err != nil {
				s.logger.WithError(err).Error("failed to evaluate profile completion")
				s.internalServerError(w)
				return
			}
			data.Report = report
		}
	}

	if err := s.renderTemplate(w, r, "page.track", data); err != nil {
		s.logger.WithError(err).Error("failed to render track page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	v := url.Values{}
	v.Set("notice", notice)
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
