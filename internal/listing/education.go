package listing

// InstitutionType は教育機関の種別です。
type InstitutionType string

const (
	InstitutionUniversity     InstitutionType = "UNIVERSITY"
	InstitutionCollege        InstitutionType = "COLLEGE"
	InstitutionLibrary        InstitutionType = "LIBRARY"
	InstitutionCoachingCenter InstitutionType = "COACHING_CENTER"
	InstitutionStudyCenter    InstitutionType = "STUDY_CENTER"
)

// Valid は既知の種別かどうかを返します。
func (t InstitutionType) Valid() bool {
	switch t {
	case InstitutionUniversity, InstitutionCollege, InstitutionLibrary, InstitutionCoachingCenter, InstitutionStudyCenter:
		return true
	default:
		return false
	}
}

// EducationalInstitution は教育カテゴリ共通の掲載項目です。
type EducationalInstitution struct {
	Post
	IsVerified bool            `json:"isVerified"`
	Private    bool            `json:"private"`
	Type       InstitutionType `json:"type"`
}

type College struct {
	EducationalInstitution
	Departments    []string `json:"departments"`
	Specialization string   `json:"specialization"`
	Affiliation    string   `json:"affiliation"`
	HasNote        bool     `json:"hasNote"`
	Facilities     []string `json:"facilities"`
}

type University struct {
	EducationalInstitution
	Faculties       []string `json:"faculties"`
	Ranking         string   `json:"ranking"`
	Accreditation   string   `json:"accreditation"`
	HasHousing      bool     `json:"hasHousing"`
	ResearchCenters []string `json:"researchCenters"`
	Facilities      []string `json:"facilities"`
}

type Library struct {
	EducationalInstitution
	BookCount        int      `json:"bookCount"`
	Sections         []string `json:"sections"`
	HasDigitalAccess bool     `json:"hasDigitalAccess"`
	OperationHours   string   `json:"operationHours"`
	HasPrinting      bool     `json:"hasPrinting"`
	HasStudyRooms    bool     `json:"hasStudyRooms"`
}

type StudyCenter struct {
	EducationalInstitution
	Capacity        int       `json:"capacity"`
	Amenities       []string  `json:"amenities"`
	HourlyRateRange []float64 `json:"hourlyRateRange"`
	Has24Access     bool      `json:"has24Access"`
	Rooms           []string  `json:"rooms"`
}

type CoachingCenter struct {
	EducationalInstitution
	Specialty string   `json:"specialty"`
	Courses   []string `json:"courses"`
	Schedule  string   `json:"schedule"`
}
