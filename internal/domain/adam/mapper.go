package adam

import (
	"fmt"

	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

// MapSubjectLevel derives one ADSL record from an SDTM DM record. Pure and
// deterministic; the input is never modified. A missing age or sex is the
// expected pre-imputation state and never an error: missing age propagates
// as a missing age group, while the safety flag collapses missing sex to "N"
// (strict two-branch policy, pinned by TestMapSubjectLevel_SafetyFlagPolicy).
// A negative age is a data-integrity violation and returns
// *cdisc.InvalidRecordError.
func MapSubjectLevel(dm *sdtm.Demographic) (*SubjectLevel, error) {
	group, err := ageGroup(dm.USubjID, dm.Age)
	if err != nil {
		return nil, err
	}

	return &SubjectLevel{
		StudyID:     dm.StudyID,
		USubjID:     dm.USubjID,
		SubjectID:   dm.SubjectID,
		Age:         cdisc.CopyInt(dm.Age),
		AgeUnit:     dm.AgeUnit,
		AgeGroup:    group,
		Sex:         cdisc.CopyStr(dm.Sex),
		Ethnicity:   cdisc.CopyStr(dm.Ethnicity),
		Race:        cdisc.CopyStr(dm.Race),
		RaceRecoded: cdisc.CopyStr(dm.RaceRecoded),
		SafetyFlag:  safetyFlag(dm.Sex),
	}, nil
}

// ageGroup partitions the non-missing age domain into <18, 18-65, >65.
// Both band boundaries are inclusive in the middle band.
func ageGroup(usubjid string, age *int) (*string, error) {
	if age == nil {
		return nil, nil
	}
	switch a := *age; {
	case a < 0:
		return nil, &cdisc.InvalidRecordError{
			Subject: usubjid,
			Field:   "age",
			Reason:  fmt.Sprintf("negative age %d", a),
		}
	case a < 18:
		return cdisc.Str(AgeGroupUnder18), nil
	case a <= 65:
		return cdisc.Str(AgeGroup18To65), nil
	default:
		return cdisc.Str(AgeGroupOver65), nil
	}
}

func safetyFlag(sex *string) string {
	if sex != nil && terminology.IsReportableSex(*sex) {
		return cdisc.FlagYes
	}
	return cdisc.FlagNo
}
