// Package imputation handles missing-value demonstration and repair on the
// SDTM DM dataset: a seeded injector blanks age/sex on a subset of records,
// and a simple median/mode imputer fills them back in before the analysis
// derivation runs.
package imputation

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
	"github.com/trialdata/cdiscpipe/internal/domain/terminology"
)

// ErrNoObservedValues is returned when a field is missing somewhere but has
// no observed values anywhere to impute from.
var ErrNoObservedValues = errors.New("imputation: no observed values")

// Inject blanks age and/or sex on a seeded subset of records, in place.
// Each record is selected with probability rate; a selected record loses
// age, sex, or both with equal probability. Returns the number of records
// touched. Deterministic for a given record order, rate, and seed.
func Inject(records []*sdtm.Demographic, rate float64, seed int64) int {
	rng := rand.New(rand.NewSource(seed))
	touched := 0
	for _, rec := range records {
		if rng.Float64() >= rate {
			continue
		}
		switch rng.Intn(3) {
		case 0:
			rec.Age = nil
		case 1:
			rec.Sex = nil
		default:
			rec.Age = nil
			rec.Sex = nil
		}
		touched++
	}
	return touched
}

// Summary describes one imputation pass.
type Summary struct {
	AgeImputed   int     `json:"age_imputed"`
	SexImputed   int     `json:"sex_imputed"`
	MedianAge    int     `json:"median_age"`
	ModalSex     string  `json:"modal_sex"`
	AgeObservedN int     `json:"age_observed_n"`
	AgeMissingN  int     `json:"age_missing_n"`
	MeanAge      float64 `json:"mean_age"`
}

// Impute fills missing ages with the rounded median of observed ages and
// missing sexes with the modal observed sex, in place. Deterministic: ties
// between M and F resolve to F. Returns ErrNoObservedValues when a field is
// missing but nothing is observed to impute from.
func Impute(records []*sdtm.Demographic) (*Summary, error) {
	var ages []float64
	sexCounts := map[string]int{}
	missingAge, missingSex := 0, 0

	for _, rec := range records {
		if rec.Age != nil {
			ages = append(ages, float64(*rec.Age))
		} else {
			missingAge++
		}
		if rec.Sex != nil {
			sexCounts[*rec.Sex]++
		} else {
			missingSex++
		}
	}

	s := &Summary{
		AgeObservedN: len(records) - missingAge,
		AgeMissingN:  missingAge,
	}

	if missingAge > 0 && len(ages) == 0 {
		return nil, ErrNoObservedValues
	}
	if missingSex > 0 && len(sexCounts) == 0 {
		return nil, ErrNoObservedValues
	}

	if len(ages) > 0 {
		sort.Float64s(ages)
		s.MedianAge = int(math.Round(stat.Quantile(0.5, stat.Empirical, ages, nil)))
		s.MeanAge = stat.Mean(ages, nil)
	}
	s.ModalSex = modalSex(sexCounts)

	for _, rec := range records {
		if rec.Age == nil {
			age := s.MedianAge
			rec.Age = &age
			s.AgeImputed++
		}
		if rec.Sex == nil {
			sex := s.ModalSex
			rec.Sex = &sex
			s.SexImputed++
		}
	}
	return s, nil
}

// modalSex picks the most frequent observed sex, preferring F on ties and
// ignoring non-M/F values unless nothing else was observed.
func modalSex(counts map[string]int) string {
	if counts[terminology.SexFemale] >= counts[terminology.SexMale] && counts[terminology.SexFemale] > 0 {
		return terminology.SexFemale
	}
	if counts[terminology.SexMale] > 0 {
		return terminology.SexMale
	}
	best, bestN := "", -1
	for sex, n := range counts {
		if n > bestN || (n == bestN && sex < best) {
			best, bestN = sex, n
		}
	}
	return best
}
