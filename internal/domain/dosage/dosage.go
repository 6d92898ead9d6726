// Package dosage maps a patient age band to resuscitation drug doses.
//
// The table is static; DoseFor is safe to call from any goroutine.
package dosage

import "strings"

// Drug is a drug with a weight-based dose table.
type Drug string

// Drugs covered by the table.
const (
	Adrenaline Drug = "adrenaline"
	Amiodarone Drug = "amiodarone"
)

// Age is a patient age band.
type Age string

// Age bands, youngest first.
const (
	AtBirth             Age = "At birth"
	PostBirthToOneMonth Age = "Post-birth to 1 month"
	OneMonth            Age = "1 month"
	ThreeMonths         Age = "3 months"
	SixMonths           Age = "6 months"
	NineMonths          Age = "9 months"
	TwelveMonths        Age = "12 months"
	EighteenMonths      Age = "18 months"
	TwoYears            Age = "2 years"
	ThreeYears          Age = "3 years"
	FourYears           Age = "4 years"
	FiveYears           Age = "5 years"
	SixYears            Age = "6 years"
	SevenYears          Age = "7 years"
	EightYears          Age = "8 years"
	NineYears           Age = "9 years"
	TenYears            Age = "10 years"
	ElevenYears         Age = "11 years"
	Adult               Age = "≥12 years / Adult"
)

// band holds the doses for one age band. Empty amiodarone strings mean no
// defined dose.
type band struct {
	age         Age
	adrenaline  string
	amiodarone1 string
	amiodarone2 string
}

//nolint:gochecknoglobals // Static lookup table.
var table = []band{
	{AtBirth, "70mcg", "", ""},
	{PostBirthToOneMonth, "50mcg", "", ""},
	{OneMonth, "50mcg", "25mg", "25mg"},
	{ThreeMonths, "60mcg", "30mg", "30mg"},
	{SixMonths, "80mcg", "40mg", "40mg"},
	{NineMonths, "90mcg", "45mg", "45mg"},
	{TwelveMonths, "100mcg", "50mg", "50mg"},
	{EighteenMonths, "110mcg", "55mg", "55mg"},
	{TwoYears, "120mcg", "60mg", "60mg"},
	{ThreeYears, "140mcg", "70mg", "60mg"},
	{FourYears, "160mcg", "80mg", "80mg"},
	{FiveYears, "190mcg", "100mg", "100mg"},
	{SixYears, "210mcg", "100mg", "100mg"},
	{SevenYears, "230mcg", "120mg", "120mg"},
	{EightYears, "260mcg", "130mg", "130mg"},
	{NineYears, "300mcg", "150mg", "150mg"},
	{TenYears, "320mcg", "160mg", "160mg"},
	{ElevenYears, "350mcg", "180mg", "180mg"},
	{Adult, "1mg", "300mg", "150mg"},
}

// Ages lists every band, youngest first.
func Ages() []Age {
	ages := make([]Age, 0, len(table))
	for _, b := range table {
		ages = append(ages, b.age)
	}

	return ages
}

// ParseAge resolves a band from its label, ignoring case and surrounding space.
// "adult" is accepted as shorthand for the adult band.
func ParseAge(s string) (Age, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "adult") {
		return Adult, true
	}

	for _, b := range table {
		if strings.EqualFold(string(b.age), s) {
			return b.age, true
		}
	}

	return "", false
}

// DoseFor returns the dose for the given drug, age band and dose ordinal
// (1 for the first dose, 2 or more for repeats). ok is false when no dose is
// defined, which callers treat as "manual entry required".
func DoseFor(drug Drug, age Age, ordinal int) (dose string, ok bool) {
	for _, b := range table {
		if b.age != age {
			continue
		}

		switch drug {
		case Adrenaline:
			dose = b.adrenaline
		case Amiodarone:
			dose = b.amiodarone2
			if ordinal <= 1 {
				dose = b.amiodarone1
			}
		}

		return dose, dose != ""
	}

	return "", false
}
