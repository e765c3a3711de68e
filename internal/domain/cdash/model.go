// Package cdash models the raw demographics case-report form: one collected
// record per subject, plus the seeded mock generator used to produce study
// data for the pipeline.
package cdash

// DemographicRecord is a raw CDASH-shaped demographics row as collected at
// the site. Optional fields are pointers; nil means not collected. RaceOther
// carries free text and is only populated when Race is OTHER or UNKNOWN.
type DemographicRecord struct {
	StudyID   string  `db:"study_id" json:"study_id"`
	SubjectID string  `db:"subject_id" json:"subject_id"`
	BirthDate *string `db:"birth_date" json:"birth_date,omitempty"` // collected text, YYYY-MM-DD
	Age       *int    `db:"age" json:"age,omitempty"`
	AgeUnit   string  `db:"age_unit" json:"age_unit"`
	Sex       *string `db:"sex" json:"sex,omitempty"`
	Ethnicity *string `db:"ethnicity" json:"ethnicity,omitempty"`
	Race      *string `db:"race" json:"race,omitempty"`
	RaceOther *string `db:"race_other" json:"race_other,omitempty"`
}
