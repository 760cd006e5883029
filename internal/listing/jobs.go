package listing

import "time"

// JobType は雇用形態です。
type JobType string

const (
	JobFullTime   JobType = "FULL_TIME"
	JobPartTime   JobType = "PART_TIME"
	JobContract   JobType = "CONTRACT"
	JobInternship JobType = "INTERNSHIP"
)

// Valid は既知の雇用形態かどうかを返します。
func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobContract, JobInternship:
		return true
	default:
		return false
	}
}

// WorkLocation は勤務形態です。
type WorkLocation string

const (
	WorkRemote WorkLocation = "REMOTE"
	WorkOffice WorkLocation = "OFFICE"
	WorkHybrid WorkLocation = "HYBRID"
)

// Valid は既知の勤務形態かどうかを返します。
func (l WorkLocation) Valid() bool {
	return l == WorkRemote || l == WorkOffice || l == WorkHybrid
}

// JobPost は求人の掲載です。
type JobPost struct {
	Post
	Company         string       `json:"company"`
	Logo            string       `json:"logo"`
	Location        string       `json:"location"`
	Salary          string       `json:"salary"`
	JobType         JobType      `json:"jobType"`
	WorkLocation    WorkLocation `json:"workLocation"`
	Requirements    []string     `json:"requirements"`
	ApplicationLink string       `json:"applicationLink"`
	ExpiryDate      time.Time    `json:"expiryDate"`
	IsActive        bool         `json:"isActive"`
}
