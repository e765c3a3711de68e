// Package report builds the demographic summary from the analysis dataset
// and renders it as text, HTML, and bar-chart figures.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/trialdata/cdiscpipe/internal/domain/adam"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
)

// MissingLabel is the display category for missing values in frequency
// tables.
const MissingLabel = "Missing"

// CountRow is one frequency-table row.
type CountRow struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// AgeStats holds descriptive statistics over observed ages.
type AgeStats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Summary is the demographic summary consumed by the renderers and the
// serve-mode API.
type Summary struct {
	StudyID          string     `json:"study_id"`
	GeneratedAt      time.Time  `json:"generated_at"`
	Total            int        `json:"total"`
	SafetyPopulation int        `json:"safety_population"`
	AgeGroups        []CountRow `json:"age_groups"`
	Sex              []CountRow `json:"sex"`
	Race             []CountRow `json:"race"`
	Ethnicity        []CountRow `json:"ethnicity"`
	AgeStats         AgeStats   `json:"age_stats"`
}

// Build computes the summary from ADSL records. Deterministic output order:
// age groups in band order, sex and race in codelist order, ethnicity
// sorted, Missing always last.
func Build(records []*adam.SubjectLevel) *Summary {
	s := &Summary{
		GeneratedAt: time.Now().UTC(),
		Total:       len(records),
	}
	if len(records) > 0 {
		s.StudyID = records[0].StudyID
	}

	ageGroupCounts := map[string]int{}
	sexCounts := map[string]int{}
	raceCounts := map[string]int{}
	ethnicCounts := map[string]int{}
	var ages []float64

	for _, rec := range records {
		if rec.SafetyFlag == cdisc.FlagYes {
			s.SafetyPopulation++
		}
		countOpt(ageGroupCounts, rec.AgeGroup)
		countOpt(sexCounts, rec.Sex)
		countOpt(raceCounts, rec.RaceRecoded)
		countOpt(ethnicCounts, rec.Ethnicity)
		if rec.Age != nil {
			ages = append(ages, float64(*rec.Age))
		}
	}

	s.AgeGroups = orderedRows(ageGroupCounts, s.Total,
		[]string{adam.AgeGroupUnder18, adam.AgeGroup18To65, adam.AgeGroupOver65})
	s.Sex = orderedRows(sexCounts, s.Total, terminology.SexCodeList)
	s.Race = orderedRows(raceCounts, s.Total, terminology.RaceCodeList)
	s.Ethnicity = orderedRows(ethnicCounts, s.Total, terminology.EthnicCodeList)
	s.AgeStats = ageStats(ages)
	return s
}

func countOpt(counts map[string]int, v *string) {
	if v == nil {
		counts[MissingLabel]++
		return
	}
	counts[*v]++
}

// orderedRows emits rows for the known categories in order, then any
// unexpected observed values sorted, then Missing. Zero-count known
// categories are dropped.
func orderedRows(counts map[string]int, total int, order []string) []CountRow {
	var rows []CountRow
	seen := map[string]bool{MissingLabel: true}
	for _, v := range order {
		seen[v] = true
		if n := counts[v]; n > 0 {
			rows = append(rows, row(v, n, total))
		}
	}
	var extras []string
	for v := range counts {
		if !seen[v] {
			extras = append(extras, v)
		}
	}
	sort.Strings(extras)
	for _, v := range extras {
		rows = append(rows, row(v, counts[v], total))
	}
	if n := counts[MissingLabel]; n > 0 {
		rows = append(rows, row(MissingLabel, n, total))
	}
	return rows
}

func row(value string, count, total int) CountRow {
	r := CountRow{Value: value, Count: count}
	if total > 0 {
		r.Percent = 100 * float64(count) / float64(total)
	}
	return r
}

func ageStats(ages []float64) AgeStats {
	if len(ages) == 0 {
		return AgeStats{}
	}
	sort.Float64s(ages)
	return AgeStats{
		N:      len(ages),
		Mean:   stat.Mean(ages, nil),
		SD:     stat.StdDev(ages, nil),
		Median: stat.Quantile(0.5, stat.Empirical, ages, nil),
		Min:    int(ages[0]),
		Max:    int(ages[len(ages)-1]),
	}
}
