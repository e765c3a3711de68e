// Package sdtm models the standardized demographics (DM) dataset and the
// CDASH-to-SDTM derivation that produces it.
package sdtm

import "time"

// Demographic is one SDTM DM row. Derived fields (Domain, USubjID,
// RaceRecoded) are additive; the collected Race/RaceOther values are carried
// through untouched for traceability.
type Demographic struct {
	StudyID     string     `db:"study_id" json:"STUDYID"`
	Domain      string     `db:"domain" json:"DOMAIN"`
	USubjID     string     `db:"usubjid" json:"USUBJID"`
	SubjectID   string     `db:"subject_id" json:"SUBJID"`
	BirthDate   *time.Time `db:"birth_date" json:"BRTHDTC,omitempty"`
	Age         *int       `db:"age" json:"AGE,omitempty"`
	AgeUnit     string     `db:"age_unit" json:"AGEU"`
	Sex         *string    `db:"sex" json:"SEX,omitempty"`
	Ethnicity   *string    `db:"ethnicity" json:"ETHNIC,omitempty"`
	Race        *string    `db:"race" json:"RACE,omitempty"`
	RaceOther   *string    `db:"race_other" json:"RACEOTH,omitempty"`
	RaceRecoded *string    `db:"race_recoded" json:"RACEREC,omitempty"`
}
