package types

type NavbarData struct {
	IsAdmin       bool
	AdminUsername string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Notice string
	Error  string
}

type CrewRegisterPageData struct {
	BasePageData
	Form        CrewRegistrationForm
	Error       string
	FieldErrors map[string]string
}

type StaffRegisterPageData struct {
	BasePageData
	Form        StaffRegistrationForm
	Error       string
	FieldErrors map[string]string
}

type AdminLoginPageData struct {
	BasePageData
	Username string
	Error    string
}

type DashboardPageData struct {
	BasePageData
	TotalCrew      int
	TotalStaff     int
	CrewScreening  int
	StaffScreening int
	CrewApproved   int
	StaffApproved  int
	RecentCrew     []*CrewMember
	RecentStaff    []*StaffMember
}

type CrewListPageData struct {
	BasePageData
	Crew         []*CrewMember
	Search       string
	StatusFilter string
}

type StaffListPageData struct {
	BasePageData
	Staff        []*StaffMember
	Search       string
	StatusFilter string
}

// CrewRegistrationForm carries the public registration fields. File parts
// are pulled from the multipart form separately.
type CrewRegistrationForm struct {
	Name                         string `form:"name"`
	Rank                         string `form:"rank"`
	Passport                     string `form:"passport"`
	Nationality                  string `form:"nationality"`
	DateOfBirth                  string `form:"date_of_birth"`
	YearsExperience              int    `form:"years_experience"`
	LastVesselType               string `form:"last_vessel_type"`
	AvailabilityDate             string `form:"availability_date"`
	AvailablePortCity            string `form:"available_port_city"`
	MobileNumber                 string `form:"mobile_number"`
	Email                        string `form:"email"`
	EmergencyContactName         string `form:"emergency_contact_name"`
	EmergencyContactPhone        string `form:"emergency_contact_phone"`
	EmergencyContactRelationship string `form:"emergency_contact_relationship"`
}

type StaffRegistrationForm struct {
	FullName          string `form:"full_name"`
	EmailOrWhatsapp   string `form:"email_or_whatsapp"`
	PositionApplying  string `form:"position_applying"`
	Department        string `form:"department"`
	YearsExperience   int    `form:"years_experience"`
	CurrentEmployer   string `form:"current_employer"`
	Location          string `form:"location"`
	AvailabilityDate  string `form:"availability_date"`
	MobileNumber      string `form:"mobile_number"`
	Education         string `form:"education"`
	Certifications    string `form:"certifications"`
	SalaryExpectation string `form:"salary_expectation"`
}
