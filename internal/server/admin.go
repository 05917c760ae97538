package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"crewport/internal/documents"
	"crewport/internal/store"
	"crewport/internal/utils"
	"crewport/internal/workflow"
	"crewport/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

type crewDetailPageData struct {
	types.BasePageData
	Crew       *types.CrewMember
	Report     *documents.CompletionReport
	ProfileURL string
	Actions    []workflow.Action
	Notice     string
	Error      string
}

type staffDetailPageData struct {
	types.BasePageData
	Staff   *types.StaffMember
	Actions []workflow.Action
	Notice  string
	Error   string
}

func (s *Service) handleGetAdminLogin(w http.ResponseWriter, r *http.Request) {
	data := &types.AdminLoginPageData{
		BasePageData: types.BasePageData{Title: "Admin Login"},
	}

	if err := s.renderTemplate(w, r, "page.admin.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin login page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostAdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	data := &types.AdminLoginPageData{
		BasePageData: types.BasePageData{Title: "Admin Login"},
		Username:     username,
	}

	admin, err := s.adminRepo.AdminByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, types.ErrAdminNotFound) {
			s.logger.WithError(err).Error("failed to look up admin")
			s.internalServerError(w)
			return
		}

		// Burn a hash comparison anyway so a missing username costs the
		// same as a wrong password.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(password))

		data.Error = "Invalid username or password."
		if renderErr := s.renderTemplate(w, r, "page.admin.login", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render admin login page with error")
			s.internalServerError(w)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", username).Info("admin login rejected")

		data.Error = "Invalid username or password."
		if renderErr := s.renderTemplate(w, r, "page.admin.login", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render admin login page with error")
			s.internalServerError(w)
		}
		return
	}

	if err := s.setAdminSession(w, admin); err != nil {
		s.logger.WithError(err).Error("failed to encode admin session cookie")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("username", username).Info("admin logged in")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Service) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAdminSession(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data := &types.DashboardPageData{
		BasePageData: types.BasePageData{Title: "Dashboard"},
	}

	var err error
	if data.TotalCrew, err = s.crewRepo.CountCrew(ctx); err != nil {
		s.logger.WithError(err).Error("failed to count crew")
		s.internalServerError(w)
		return
	}
	if data.TotalStaff, err = s.staffRepo.CountStaff(ctx); err != nil {
		s.logger.WithError(err).Error("failed to count staff")
		s.internalServerError(w)
		return
	}
	if data.CrewScreening, err = s.crewRepo.CountCrewByStatus(ctx, types.StatusScreening); err != nil {
		s.logger.WithError(err).Error("failed to count crew in screening")
		s.internalServerError(w)
		return
	}
	if data.StaffScreening, err = s.staffRepo.CountStaffByStatus(ctx, types.StatusScreening); err != nil {
		s.logger.WithError(err).Error("failed to count staff in screening")
		s.internalServerError(w)
		return
	}
	if data.CrewApproved, err = s.crewRepo.CountCrewByStatus(ctx, types.StatusApproved); err != nil {
		s.logger.WithError(err).Error("failed to count approved crew")
		s.internalServerError(w)
		return
	}
	if data.StaffApproved, err = s.staffRepo.CountStaffByStatus(ctx, types.StatusApproved); err != nil {
		s.logger.WithError(err).Error("failed to count approved staff")
		s.internalServerError(w)
		return
	}

	if data.RecentCrew, err = s.crewRepo.RecentCrew(ctx, 5); err != nil {
		s.logger.WithError(err).Error("failed to list recent crew")
		s.internalServerError(w)
		return
	}
	if data.RecentStaff, err = s.staffRepo.RecentStaff(ctx, 5); err != nil {
		s.logger.WithError(err).Error("failed to list recent staff")
		s.internalServerError(w)
		return
	}

	if err := s.renderTemplate(w, r, "page.admin.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard")
		s.internalServerError(w)
		return
	}
}

// statusFilterFromQuery parses the ?status= query into a filter value. An
// empty or unparseable value means no filter.
func statusFilterFromQuery(r *http.Request) (*types.ReviewStatus, string) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, ""
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, ""
	}

	status := types.ReviewStatus(n)
	return &status, raw
}

func (s *Service) handleCrewList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, statusRaw := statusFilterFromQuery(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	crew, err := s.crewRepo.SearchCrew(ctx, store.CrewFilter{Status: status, Search: search})
	if err != nil {
		s.logger.WithError(err).Error("failed to search crew")
		s.internalServerError(w)
		return
	}

	data := &types.CrewListPageData{
		BasePageData: types.BasePageData{Title: "Crew Applications"},
		Crew:         crew,
		Search:       search,
		StatusFilter: statusRaw,
	}

	if err := s.renderTemplate(w, r, "page.admin.crew", data); err != nil {
		s.logger.WithError(err).Error("failed to render crew list")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleCrewDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.crewFromPath(w, r)
	if !ok {
		return
	}

	report, err := s.documents.Completion(ctx, member.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to evaluate profile completion")
		s.internalServerError(w)
		return
	}

	data := &crewDetailPageData{
		BasePageData: types.BasePageData{Title: member.Name},
		Crew:         member,
		Report:       report,
		ProfileURL:   s.profileURL(member),
		Actions:      workflow.CrewActions(),
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.admin.crew-detail", data); err != nil {
		s.logger.WithError(err).Error("failed to render crew detail")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleCrewReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.crewFromPath(w, r)
	if !ok {
		return
	}

	action := workflow.Action(r.FormValue("action"))
	note := strings.TrimSpace(r.FormValue("note"))

	status, err := s.reviews.ReviewCrew(ctx, member.ID, action, note)
	if err != nil {
		var unknown *workflow.UnknownActionError
		if errors.As(err, &unknown) {
			s.redirectCrewDetail(w, r, member.ID, url.Values{"error": {"Unknown review action."}})
			return
		}

		s.logger.WithError(err).Error("failed to apply crew review")
		s.internalServerError(w)
		return
	}

	s.redirectCrewDetail(w, r, member.ID, url.Values{"notice": {"Status set to " + status.Name() + "."}})
}

// handleCrewProfileLink issues the member's profile token on demand so an
// admin can hand out the link. Issuing is idempotent; members registered
// through the portal already have one.
func (s *Service) handleCrewProfileLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.crewFromPath(w, r)
	if !ok {
		return
	}

	if _, err := s.profiles.Issue(ctx, member); err != nil {
		s.logger.WithError(err).Error("failed to issue profile token")
		s.internalServerError(w)
		return
	}

	s.redirectCrewDetail(w, r, member.ID, url.Values{"notice": {"Profile link ready."}})
}

func (s *Service) handleCrewDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.crewFromPath(w, r)
	if !ok {
		return
	}

	if err := s.crewRepo.DeleteCrew(ctx, member.ID); err != nil {
		s.logger.WithError(err).Error("failed to delete crew member")
		s.internalServerError(w)
		return
	}

	s.logger.WithField("crew_id", member.ID).Info("crew member deleted")
	s.redirectWithNotice(w, r, "/admin/crew", "Application deleted.")
}

func (s *Service) handleAdminDocumentDownload(w http.ResponseWriter, r *http.Request) {
	member, ok := s.crewFromPath(w, r)
	if !ok {
		return
	}

	docID, err := strconv.ParseInt(r.PathValue("docID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.streamDocument(w, r, member.ID, docID)
}

func (s *Service) handleStaffList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, statusRaw := statusFilterFromQuery(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	staff, err := s.staffRepo.SearchStaff(ctx, store.StaffFilter{Status: status, Search: search})
	if err != nil {
		s.logger.WithError(err).Error("failed to search staff")
		s.internalServerError(w)
		return
	}

	data := &types.StaffListPageData{
		BasePageData: types.BasePageData{Title: "Staff Applications"},
		Staff:        staff,
		Search:       search,
		StatusFilter: statusRaw,
	}

	if err := s.renderTemplate(w, r, "page.admin.staff", data); err != nil {
		s.logger.WithError(err).Error("failed to render staff list")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleStaffDetail(w http.ResponseWriter, r *http.Request) {
	member, ok := s.staffFromPath(w, r)
	if !ok {
		return
	}

	data := &staffDetailPageData{
		BasePageData: types.BasePageData{Title: member.FullName},
		Staff:        member,
		Actions:      workflow.StaffActions(),
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.admin.staff-detail", data); err != nil {
		s.logger.WithError(err).Error("failed to render staff detail")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleStaffReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.staffFromPath(w, r)
	if !ok {
		return
	}

	action := workflow.Action(r.FormValue("action"))
	note := strings.TrimSpace(r.FormValue("note"))

	status, err := s.reviews.ReviewStaff(ctx, member.ID, action, note)
	if err != nil {
		var unknown *workflow.UnknownActionError
		if errors.As(err, &unknown) {
			v := url.Values{"error": {"Unknown review action."}}
			http.Redirect(w, r, fmt.Sprintf("/admin/staff/%d?%s", member.ID, v.Encode()), http.StatusSeeOther)
			return
		}

		s.logger.WithError(err).Error("failed to apply staff review")
		s.internalServerError(w)
		return
	}

	v := url.Values{"notice": {"Status set to " + status.Name() + "."}}
	http.Redirect(w, r, fmt.Sprintf("/admin/staff/%d?%s", member.ID, v.Encode()), http.StatusSeeOther)
}

// handleStaffFileDownload streams a staff applicant's resume or photo.
func (s *Service) handleStaffFileDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, ok := s.staffFromPath(w, r)
	if !ok {
		return
	}

	var key *string
	switch r.PathValue("kind") {
	case "resume":
		key = member.ResumeFile
	case "photo":
		key = member.PhotoFile
	default:
		http.NotFound(w, r)
		return
	}

	if key == nil || *key == "" {
		http.NotFound(w, r)
		return
	}

	obj, err := s.files.Get(ctx, *key)
	if err != nil {
		s.logger.WithError(err).WithField("key", *key).Error("failed to open staff file")
		s.internalServerError(w)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(*key)))
	if obj.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}

	if _, err := io.Copy(w, obj.Body); err != nil {
		s.logger.WithError(err).Warn("staff file stream interrupted")
	}
}

func (s *Service) handleCrewExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	crew, err := s.crewRepo.SearchCrew(ctx, store.CrewFilter{})
	if err != nil {
		s.logger.WithError(err).Error("failed to list crew for export")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "crew_"+time.Now().UTC().Format("20060102")+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "name", "rank", "passport", "nationality", "date_of_birth",
		"years_experience", "availability_date", "mobile_number", "email",
		"status", "admin_notes", "created_at",
	})

	for _, m := range crew {
		_ = cw.Write([]string{
			strconv.FormatInt(m.ID, 10),
			m.Name,
			m.Rank,
			m.Passport,
			m.Nationality,
			m.DateOfBirth.Format("2006-01-02"),
			strconv.Itoa(m.YearsExperience),
			m.AvailabilityDate.Format("2006-01-02"),
			m.MobileNumber,
			m.Email,
			m.Status.Name(),
			utils.PtrString(m.AdminNotes),
			m.CreatedAt.Format(time.RFC3339),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.WithError(err).Warn("crew csv export interrupted")
	}
}

func (s *Service) handleStaffExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	staff, err := s.staffRepo.SearchStaff(ctx, store.StaffFilter{})
	if err != nil {
		s.logger.WithError(err).Error("failed to list staff for export")
		s.internalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "staff_"+time.Now().UTC().Format("20060102")+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "full_name", "email_or_whatsapp", "position_applying", "department",
		"years_experience", "location", "availability_date", "mobile_number",
		"status", "admin_notes", "created_at",
	})

	for _, m := range staff {
		_ = cw.Write([]string{
			strconv.FormatInt(m.ID, 10),
			m.FullName,
			m.EmailOrWhatsapp,
			m.PositionApplying,
			m.Department,
			strconv.Itoa(m.YearsExperience),
			m.Location,
			m.AvailabilityDate.Format("2006-01-02"),
			m.MobileNumber,
			m.Status.Name(),
			utils.PtrString(m.AdminNotes),
			m.CreatedAt.Format(time.RFC3339),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.WithError(err).Warn("staff csv export interrupted")
	}
}

func (s *Service) crewFromPath(w http.ResponseWriter, r *http.Request) (*types.CrewMember, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	member, err := s.crewRepo.CrewByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrCrewNotFound) {
			http.NotFound(w, r)
			return nil, false
		}

		s.logger.WithError(err).Error("failed to fetch crew member")
		s.internalServerError(w)
		return nil, false
	}

	return member, true
}

func (s *Service) staffFromPath(w http.ResponseWriter, r *http.Request) (*types.StaffMember, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	member, err := s.staffRepo.StaffByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrStaffNotFound) {
			http.NotFound(w, r)
			return nil, false
		}

		s.logger.WithError(err).Error("failed to fetch staff member")
		s.internalServerError(w)
		return nil, false
	}

	return member, true
}

func (s *Service) redirectCrewDetail(w http.ResponseWriter, r *http.Request, crewID int64, v url.Values) {
	http.Redirect(w, r, fmt.Sprintf("/admin/crew/%d?%s", crewID, v.Encode()), http.StatusSeeOther)
}
