// Package metadata provides the flat variable-description table for the
// three pipeline datasets: name, label, and type per variable. Purely
// descriptive; nothing in the pipeline consumes it.
package metadata

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Variable describes one dataset column.
type Variable struct {
	Dataset string `json:"dataset"`
	Name    string `json:"name"`
	Label   string `json:"label"`
	Type    string `json:"type"`
}

// Variables returns the define table for all three datasets, in dataset and
// column order.
func Variables() []Variable {
	return []Variable{
		{"CDASH", "STUDYID", "Study Identifier", "text"},
		{"CDASH", "SUBJID", "Subject Identifier for the Study", "text"},
		{"CDASH", "BRTHDAT", "Date of Birth (collected)", "text"},
		{"CDASH", "AGE", "Age", "integer"},
		{"CDASH", "AGEU", "Age Unit", "text"},
		{"CDASH", "SEX", "Sex", "text"},
		{"CDASH", "ETHNIC", "Ethnicity", "text"},
		{"CDASH", "RACE", "Race", "text"},
		{"CDASH", "RACEOTH", "Race, Other Specify", "text"},

		{"SDTM DM", "STUDYID", "Study Identifier", "text"},
		{"SDTM DM", "DOMAIN", "Domain Abbreviation", "text"},
		{"SDTM DM", "USUBJID", "Unique Subject Identifier", "text"},
		{"SDTM DM", "SUBJID", "Subject Identifier for the Study", "text"},
		{"SDTM DM", "BRTHDTC", "Date of Birth", "date"},
		{"SDTM DM", "AGE", "Age", "integer"},
		{"SDTM DM", "AGEU", "Age Unit", "text"},
		{"SDTM DM", "SEX", "Sex", "text"},
		{"SDTM DM", "ETHNIC", "Ethnicity", "text"},
		{"SDTM DM", "RACE", "Race", "text"},
		{"SDTM DM", "RACEOTH", "Race, Other Specify", "text"},
		{"SDTM DM", "RACEREC", "Race, Reconciled", "text"},

		{"ADaM ADSL", "STUDYID", "Study Identifier", "text"},
		{"ADaM ADSL", "USUBJID", "Unique Subject Identifier", "text"},
		{"ADaM ADSL", "SUBJID", "Subject Identifier for the Study", "text"},
		{"ADaM ADSL", "AGE", "Age", "integer"},
		{"ADaM ADSL", "AGEU", "Age Unit", "text"},
		{"ADaM ADSL", "AGEGR1", "Pooled Age Group 1", "text"},
		{"ADaM ADSL", "SEX", "Sex", "text"},
		{"ADaM ADSL", "ETHNIC", "Ethnicity", "text"},
		{"ADaM ADSL", "RACE", "Race", "text"},
		{"ADaM ADSL", "RACEREC", "Race, Reconciled", "text"},
		{"ADaM ADSL", "SAFFL", "Safety Population Flag", "text"},
	}
}

// WriteTable renders the define table as aligned text.
func WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tVARIABLE\tLABEL\tTYPE")
	for _, v := range Variables() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Dataset, v.Name, v.Label, v.Type)
	}
	return tw.Flush()
}
