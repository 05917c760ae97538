package server

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"crewport/internal/documents"
	"crewport/pkg/types"

	"github.com/sirupsen/logrus"
)

// registrationUploadFields is the explicit mapping from multipart field name
// to document type for the crew registration form. The form only collects
// the documents most applicants have on hand; the rest are uploaded later
// through the profile link.
var registrationUploadFields = []struct {
	Field   string
	DocType types.DocumentType
}{
	{"passport_file", types.DocTypePassport},
	{"photo_file", types.DocTypePhoto},
	{"medical_certificate_file", types.DocTypeMedicalCert},
	{"cdc_file", types.DocTypeCDC},
	{"coc_cop_file", types.DocTypeCOCCOP},
	{"stcw_certificates_file", types.DocTypeSTCW},
	{"resume_file", types.DocTypeResume},
}

func (s *Service) handleGetCrewRegister(w http.ResponseWriter, r *http.Request) {
	data := &types.CrewRegisterPageData{
		BasePageData: types.BasePageData{Title: "Crew Registration"},
	}

	if err := s.renderTemplate(w, r, "page.register.crew", data); err != nil {
		s.logger.WithError(err).Error("failed to render crew register page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostCrewRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.logger.WithError(err).Info("failed to parse crew registration form")
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	var input types.CrewRegistrationForm
	if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
		s.logger.WithError(err).Error("failed to decode crew registration form")
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	input.Passport = strings.ToUpper(strings.TrimSpace(input.Passport))

	data := &types.CrewRegisterPageData{
		BasePageData: types.BasePageData{Title: "Crew Registration"},
		Form:         input,
	}

	dob, availability, fieldErrs := validateCrewInput(&input)
	data.FieldErrors = fieldErrs
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during crew registration")

		data.Error = "Please fix the highlighted fields."
		if err := s.renderTemplate(w, r, "page.register.crew", data); err != nil {
			s.logger.WithError(err).Error("failed to render crew register page with validation errors")
			s.internalServerError(w)
		}
		return
	}

	member := &types.CrewMember{
		Name:             input.Name,
		Rank:             input.Rank,
		Passport:         input.Passport,
		Nationality:      input.Nationality,
		DateOfBirth:      dob,
		YearsExperience:  input.YearsExperience,
		AvailabilityDate: availability,
		MobileNumber:     input.MobileNumber,
		Email:            input.Email,
		Status:           types.StatusRegistered,
	}
	setOptional(&member.LastVesselType, input.LastVesselType)
	setOptional(&member.AvailablePortCity, input.AvailablePortCity)
	setOptional(&member.EmergencyContactName, input.EmergencyContactName)
	setOptional(&member.EmergencyContactPhone, input.EmergencyContactPhone)
	setOptional(&member.EmergencyContactRelationship, input.EmergencyContactRelationship)

	if err := s.crewRepo.CreateCrew(ctx, member); err != nil {
		if errors.Is(err, types.ErrPassportInUse) {
			data.Error = "An application with this passport number already exists."
			data.FieldErrors = map[string]string{"passport": "Already registered. Use the tracking page instead."}
			if renderErr := s.renderTemplate(w, r, "page.register.crew", data); renderErr != nil {
				s.logger.WithError(renderErr).Error("failed to render crew register page with duplicate passport error")
				s.internalServerError(w)
			}
			return
		}

		s.logger.WithError(err).Error("failed to create crew member")
		s.internalServerError(w)
		return
	}

	if _, err := s.profiles.Issue(ctx, member); err != nil {
		s.logger.WithError(err).Error("failed to issue profile token")
		s.internalServerError(w)
		return
	}

	// Documents are best-effort at registration time; the profile link is
	// the recovery path for anything that failed or was skipped.
	for _, field := range registrationUploadFields {
		uploads := uploadsFromForm(r.MultipartForm, field.Field)
		if len(uploads) == 0 {
			continue
		}

		if _, err := s.documents.AddBatch(ctx, member.ID, field.DocType, uploads); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"crew_id":       member.ID,
				"document_type": field.DocType,
			}).Error("failed to store registration documents")
		}
	}

	http.Redirect(w, r, s.profilePath(member), http.StatusSeeOther)
}

func (s *Service) handleGetStaffRegister(w http.ResponseWriter, r *http.Request) {
	data := &types.StaffRegisterPageData{
		BasePageData: types.BasePageData{Title: "Staff Application"},
	}

	if err := s.renderTemplate(w, r, "page.register.staff", data); err != nil {
		s.logger.WithError(err).Error("failed to render staff register page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostStaffRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.logger.WithError(err).Info("failed to parse staff application form")
		http.Error(w, "upload too large or malformed", http.StatusBadRequest)
		return
	}

	var input types.StaffRegistrationForm
	if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
		s.logger.WithError(err).Error("failed to decode staff application form")
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	data := &types.StaffRegisterPageData{
		BasePageData: types.BasePageData{Title: "Staff Application"},
		Form:         input,
	}

	availability, fieldErrs := validateStaffInput(&input)
	data.FieldErrors = fieldErrs
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during staff application")

		data.Error = "Please fix the highlighted fields."
		if err := s.renderTemplate(w, r, "page.register.staff", data); err != nil {
			s.logger.WithError(err).Error("failed to render staff register page with validation errors")
			s.internalServerError(w)
		}
		return
	}

	member := &types.StaffMember{
		FullName:         input.FullName,
		EmailOrWhatsapp:  input.EmailOrWhatsapp,
		PositionApplying: input.PositionApplying,
		Department:       input.Department,
		YearsExperience:  input.YearsExperience,
		Location:         input.Location,
		AvailabilityDate: availability,
		MobileNumber:     input.MobileNumber,

		// Staff skip the registered state; screening begins on submission.
		Status: types.StatusScreening,
	}
	setOptional(&member.CurrentEmployer, input.CurrentEmployer)
	setOptional(&member.Education, input.Education)
	setOptional(&member.Certifications, input.Certifications)
	setOptional(&member.SalaryExpectation, input.SalaryExpectation)

	// Staff resume and photo live on the row itself; there is no document
	// log for staff applicants.
	for _, f := range []struct {
		field string
		dest  **string
	}{
		{"resume_file", &member.ResumeFile},
		{"photo_file", &member.PhotoFile},
	} {
		uploads := uploadsFromForm(r.MultipartForm, f.field)
		if len(uploads) == 0 || len(uploads[0].Data) == 0 {
			continue
		}

		key, err := s.storeStaffFile(r, uploads[0])
		if err != nil {
			s.logger.WithError(err).WithField("field", f.field).Error("failed to store staff file")
			continue
		}
		*f.dest = &key
	}

	if err := s.staffRepo.CreateStaff(ctx, member); err != nil {
		s.logger.WithError(err).Error("failed to create staff member")
		s.internalServerError(w)
		return
	}

	s.redirectWithNotice(w, r, "/", "Application received. Our crewing team will be in touch.")
}

func (s *Service) storeStaffFile(r *http.Request, up documents.Upload) (string, error) {
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return s.files.Put(r.Context(), "staff_files/"+up.Filename, contentType, bytes.NewReader(up.Data))
}

// uploadsFromForm drains every file part under one field name. Empty parts
// survive here; the documents service filters them.
func uploadsFromForm(form *multipart.Form, field string) []documents.Upload {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil
	}

	uploads := make([]documents.Upload, 0, len(headers))
	for _, header := range headers {
		uploads = append(uploads, uploadFromHeader(header))
	}
	return uploads
}

func uploadFromHeader(header *multipart.FileHeader) documents.Upload {
	up := documents.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}

	file, err := header.Open()
	if err != nil {
		return up
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return up
	}

	up.Data = data
	return up
}

func validateCrewInput(input *types.CrewRegistrationForm) (dob, availability time.Time, errs map[string]string) {
	errs = map[string]string{}

	if !required(input.Name) {
		errs["name"] = "Full name is required."
	}
	if !required(input.Rank) {
		errs["rank"] = "Rank is required."
	}
	if !required(input.Passport) {
		errs["passport"] = "Passport number is required."
	}
	if !required(input.Nationality) {
		errs["nationality"] = "Nationality is required."
	}
	if !required(input.MobileNumber) {
		errs["mobile_number"] = "Mobile number is required."
	}

	if !required(input.Email) {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	var err error
	dob, err = time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		errs["date_of_birth"] = "Enter your date of birth as YYYY-MM-DD."
	}

	availability, err = time.Parse("2006-01-02", input.AvailabilityDate)
	if err != nil {
		errs["availability_date"] = "Enter your availability date as YYYY-MM-DD."
	}

	return dob, availability, errs
}

func validateStaffInput(input *types.StaffRegistrationForm) (availability time.Time, errs map[string]string) {
	errs = map[string]string{}

	if !required(input.FullName) {
		errs["full_name"] = "Full name is required."
	}
	if !required(input.EmailOrWhatsapp) {
		errs["email_or_whatsapp"] = "Email or WhatsApp is required."
	}
	if !required(input.PositionApplying) {
		errs["position_applying"] = "Position is required."
	}
	if !required(input.Department) {
		errs["department"] = "Department is required."
	}
	if !required(input.MobileNumber) {
		errs["mobile_number"] = "Mobile number is required."
	}

	var err error
	availability, err = time.Parse("2006-01-02", input.AvailabilityDate)
	if err != nil {
		errs["availability_date"] = "Enter your availability date as YYYY-MM-DD."
	}

	return availability, errs
}

func setOptional(dest **string, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	*dest = &v
}
