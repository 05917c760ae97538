package types

import "time"

type ReviewStatus int

const (
	StatusFlagged           ReviewStatus = -2
	StatusRejected          ReviewStatus = -1
	StatusRegistered        ReviewStatus = 0
	StatusScreening         ReviewStatus = 1
	StatusDocumentsVerified ReviewStatus = 2
	StatusApproved          ReviewStatus = 3
)

func (s ReviewStatus) Name() string {
	switch s {
	case StatusRegistered:
		return "Registered"
	case StatusScreening:
		return "Screening"
	case StatusDocumentsVerified:
		return "Documents Verified"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusFlagged:
		return "Flagged"
	default:
		return "Unknown"
	}
}

// BadgeClass maps a status to the CSS badge class the templates use.
func (s ReviewStatus) BadgeClass() string {
	switch s {
	case StatusRegistered:
		return "secondary"
	case StatusScreening:
		return "warning"
	case StatusDocumentsVerified:
		return "info"
	case StatusApproved:
		return "success"
	case StatusRejected:
		return "danger"
	case StatusFlagged:
		return "dark"
	default:
		return "secondary"
	}
}

// CrewMember is a seafarer registrant tracked through the review workflow.
type CrewMember struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Rank     string `db:"rank"`
	Passport string `db:"passport"`

	Nationality       string    `db:"nationality"`
	DateOfBirth       time.Time `db:"date_of_birth"`
	YearsExperience   int       `db:"years_experience"`
	LastVesselType    *string   `db:"last_vessel_type"`
	AvailabilityDate  time.Time `db:"availability_date"`
	AvailablePortCity *string   `db:"available_port_city"`
	MobileNumber      string    `db:"mobile_number"`
	Email             string    `db:"email"`

	EmergencyContactName         *string `db:"emergency_contact_name"`
	EmergencyContactPhone        *string `db:"emergency_contact_phone"`
	EmergencyContactRelationship *string `db:"emergency_contact_relationship"`

	// Set once by the profile token issuer, then never rotated.
	ProfileToken *string `db:"profile_token"`

	Status         ReviewStatus `db:"status"`
	AdminNotes     *string      `db:"admin_notes"`
	ScreeningNotes *string      `db:"screening_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m *CrewMember) HasProfileToken() bool {
	return m.ProfileToken != nil && *m.ProfileToken != ""
}

// StaffMember is an office/offshore staff registrant. Staff skip the
// document log entirely; their resume and photo live on the row itself.
type StaffMember struct {
	ID               int64     `db:"id"`
	FullName         string    `db:"full_name"`
	EmailOrWhatsapp  string    `db:"email_or_whatsapp"`
	PositionApplying string    `db:"position_applying"`
	Department       string    `db:"department"`
	YearsExperience  int       `db:"years_experience"`
	CurrentEmployer  *string   `db:"current_employer"`
	Location         string    `db:"location"`
	AvailabilityDate time.Time `db:"availability_date"`
	MobileNumber     string    `db:"mobile_number"`

	Education         *string `db:"education"`
	Certifications    *string `db:"certifications"`
	SalaryExpectation *string `db:"salary_expectation"`

	ResumeFile *string `db:"resume_file"`
	PhotoFile  *string `db:"photo_file"`

	Status     ReviewStatus `db:"status"`
	AdminNotes *string      `db:"admin_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
