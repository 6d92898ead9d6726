package session

import (
	"time"

	"github.com/oshokin/eresus/internal/domain/arrest"
)

const (
	// firstAntiarrhythmicShocks is the shock count that unlocks the first dose.
	firstAntiarrhythmicShocks = 3
	// secondAntiarrhythmicShocks is the shock count that unlocks the second dose.
	secondAntiarrhythmicShocks = 5
	// amiodaroneReminderShocks is the number of shocks after the first
	// amiodarone dose that prompts for the second.
	amiodaroneReminderShocks = 2
	// moderateHypothermiaFactor stretches the adrenaline interval.
	moderateHypothermiaFactor = 2
	// adrenalineDueSoonWindow is how early the due-soon warning shows.
	adrenalineDueSoonWindow = 30 * time.Second
)

// Eligibility is the set of drug predicates derived from a session state.
// It is recomputed on every query and never cached.
type Eligibility struct {
	// AdrenalineAvailable is false in severe hypothermia.
	AdrenalineAvailable bool
	// AmiodaroneAvailable is true after enough shocks, unless lidocaine was chosen.
	AmiodaroneAvailable bool
	// LidocaineAvailable is true after enough shocks, unless amiodarone was chosen.
	LidocaineAvailable bool
	// AdrenalineInterval is the configured interval, doubled in moderate hypothermia.
	AdrenalineInterval time.Duration
	// AdrenalineDueIn is the time until the next adrenaline dose. It is
	// negative when overdue and zero before the first dose.
	AdrenalineDueIn time.Duration
	// AdrenalineDue means the interval has passed since the last dose.
	AdrenalineDue bool
	// AdrenalineDueSoon means the next dose is due within thirty seconds.
	AdrenalineDueSoon bool
	// AmiodaroneReminder prompts for the second amiodarone dose.
	AmiodaroneReminder bool
}

func eligibilityOf(st *state, interval time.Duration) Eligibility {
	hypothermia := arrest.HypothermiaGradeOf(st.reversibleCauses)

	e := Eligibility{
		AdrenalineAvailable: hypothermia != arrest.HypothermiaSevere,
		AdrenalineInterval:  interval,
	}

	if hypothermia == arrest.HypothermiaModerate {
		e.AdrenalineInterval *= moderateHypothermiaFactor
	}

	e.AmiodaroneAvailable = e.AdrenalineAvailable &&
		st.antiarrhythmic != arrest.AntiarrhythmicLidocaine &&
		antiarrhythmicDoseUnlocked(st.shockCount, st.amiodaroneCount)
	e.LidocaineAvailable = e.AdrenalineAvailable &&
		st.antiarrhythmic != arrest.AntiarrhythmicAmiodarone &&
		antiarrhythmicDoseUnlocked(st.shockCount, st.lidocaineCount)

	if st.adrenalineCount > 0 {
		e.AdrenalineDueIn = e.AdrenalineInterval - (st.total() - st.lastAdrenalineAt)
		e.AdrenalineDue = e.AdrenalineDueIn <= 0
		e.AdrenalineDueSoon = !e.AdrenalineDue && e.AdrenalineDueIn <= adrenalineDueSoonWindow
	}

	e.AmiodaroneReminder = st.amiodaroneCount == 1 &&
		st.shockCount >= st.shockCountAtFirstAmiodarone+amiodaroneReminderShocks

	return e
}

func antiarrhythmicDoseUnlocked(shocks, given int) bool {
	switch given {
	case 0:
		return shocks >= firstAntiarrhythmicShocks
	case 1:
		return shocks >= secondAntiarrhythmicShocks
	default:
		return false
	}
}
