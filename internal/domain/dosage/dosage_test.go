package dosage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDoseFor_Adult checks the adult doses including the smaller repeat amiodarone dose.
func TestDoseFor_Adult(t *testing.T) {
	t.Parallel()

	dose, ok := DoseFor(Adrenaline, Adult, 3)
	require.True(t, ok)
	require.Equal(t, "1mg", dose)

	dose, ok = DoseFor(Amiodarone, Adult, 1)
	require.True(t, ok)
	require.Equal(t, "300mg", dose)

	dose, ok = DoseFor(Amiodarone, Adult, 2)
	require.True(t, ok)
	require.Equal(t, "150mg", dose)
}

// TestDoseFor_Neonates ensures amiodarone is undefined for the two youngest bands only.
func TestDoseFor_Neonates(t *testing.T) {
	t.Parallel()

	for _, age := range []Age{AtBirth, PostBirthToOneMonth} {
		_, ok := DoseFor(Amiodarone, age, 1)
		require.False(t, ok, age)

		_, ok = DoseFor(Adrenaline, age, 1)
		require.True(t, ok, age)
	}

	dose, ok := DoseFor(Amiodarone, OneMonth, 1)
	require.True(t, ok)
	require.Equal(t, "25mg", dose)

	dose, ok = DoseFor(Amiodarone, ThreeYears, 2)
	require.True(t, ok)
	require.Equal(t, "60mg", dose)
}

// TestDoseFor_Unknown rejects unknown drugs and bands.
func TestDoseFor_Unknown(t *testing.T) {
	t.Parallel()

	_, ok := DoseFor(Adrenaline, "42 years", 1)
	require.False(t, ok)

	_, ok = DoseFor("atropine", Adult, 1)
	require.False(t, ok)
}

// TestAgesAndParse covers the band list and label parsing.
func TestAgesAndParse(t *testing.T) {
	t.Parallel()

	ages := Ages()
	require.Len(t, ages, 19)
	require.Equal(t, AtBirth, ages[0])
	require.Equal(t, Adult, ages[len(ages)-1])

	for _, age := range ages {
		dose, ok := DoseFor(Adrenaline, age, 1)
		require.True(t, ok)
		require.NotEmpty(t, dose)

		parsed, ok := ParseAge(" " + string(age) + " ")
		require.True(t, ok)
		require.Equal(t, age, parsed)
	}

	got, ok := ParseAge("ADULT")
	require.True(t, ok)
	require.Equal(t, Adult, got)

	_, ok = ParseAge("teenager")
	require.False(t, ok)
}
