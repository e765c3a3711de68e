// Package adam models the subject-level analysis dataset (ADSL) and the
// SDTM-to-ADaM derivation that produces it.
package adam

// Age group categories for AGEGR1. The middle band is inclusive on both
// boundaries: 18 and 65 both fall in AgeGroup18To65.
const (
	AgeGroupUnder18 = "<18"
	AgeGroup18To65  = "18-65"
	AgeGroupOver65  = ">65"
)

// SubjectLevel is one ADSL row: the analysis-ready view of a subject.
// AgeGroup is nil when age is still missing after imputation; SafetyFlag is
// always "Y" or "N".
type SubjectLevel struct {
	StudyID     string  `db:"study_id" json:"STUDYID"`
	USubjID     string  `db:"usubjid" json:"USUBJID"`
	SubjectID   string  `db:"subject_id" json:"SUBJID"`
	Age         *int    `db:"age" json:"AGE,omitempty"`
	AgeUnit     string  `db:"age_unit" json:"AGEU"`
	AgeGroup    *string `db:"age_group" json:"AGEGR1,omitempty"`
	Sex         *string `db:"sex" json:"SEX,omitempty"`
	Ethnicity   *string `db:"ethnicity" json:"ETHNIC,omitempty"`
	Race        *string `db:"race" json:"RACE,omitempty"`
	RaceRecoded *string `db:"race_recoded" json:"RACEREC,omitempty"`
	SafetyFlag  string  `db:"safety_flag" json:"SAFFL"`
}
