package arrest

import (
	"slices"

	"github.com/google/uuid"
)

// HypothermiaItemName is the reversible cause that carries a hypothermia grade.
const HypothermiaItemName = "Hypothermia"

// ChecklistKind selects one of the session checklists.
type ChecklistKind string

// Checklist kinds.
const (
	ChecklistReversibleCauses ChecklistKind = "reversible_causes"
	ChecklistPostROSC         ChecklistKind = "post_rosc"
	ChecklistPostMortem       ChecklistKind = "post_mortem"
)

// ChecklistItem is a completable clinical reminder.
type ChecklistItem struct {
	// ID is stable for the lifetime of a session generation.
	ID string
	// Name is the display label.
	Name string
	// Completed is toggled by the user.
	Completed bool
	// Hypothermia is only meaningful on the item named HypothermiaItemName.
	Hypothermia HypothermiaGrade
}

//nolint:gochecknoglobals // Immutable templates, copied on every reset.
var (
	reversibleCauseNames = []string{
		"Hypoxia", "Hypovolemia", "Hypo/Hyperkalaemia", HypothermiaItemName,
		"Toxins", "Tamponade", "Tension Pneumothorax", "Thrombosis",
	}
	postROSCTaskNames = []string{
		"Optimise Ventilation & Oxygenation", "12-Lead ECG",
		"Treat Hypotension (SBP < 90)", "Check Blood Glucose",
		"Consider Temperature Control", "Identify & Treat Causes",
	}
	postMortemTaskNames = []string{
		"Reposition body & remove lines/tubes", "Complete documentation",
		"Determine expected/unexpected death", "Contact Coroner (if unexpected)",
		"Follow local body handling procedure", "Provide leaflet to bereaved relatives",
		"Consider organ/tissue donation",
	}
)

// NewChecklist builds a fresh, uncompleted checklist of the given kind.
// Unknown kinds yield an empty list.
func NewChecklist(kind ChecklistKind) []ChecklistItem {
	var names []string

	switch kind {
	case ChecklistReversibleCauses:
		names = reversibleCauseNames
	case ChecklistPostROSC:
		names = postROSCTaskNames
	case ChecklistPostMortem:
		names = postMortemTaskNames
	}

	items := make([]ChecklistItem, 0, len(names))
	for _, name := range names {
		items = append(items, ChecklistItem{
			ID:          uuid.NewString(),
			Name:        name,
			Hypothermia: HypothermiaNone,
		})
	}

	return items
}

// CloneChecklist returns an independent copy of items.
func CloneChecklist(items []ChecklistItem) []ChecklistItem {
	return slices.Clone(items)
}

// HypothermiaGradeOf returns the grade recorded on the Hypothermia item.
func HypothermiaGradeOf(items []ChecklistItem) HypothermiaGrade {
	for _, item := range items {
		if item.Name == HypothermiaItemName {
			return item.Hypothermia
		}
	}

	return HypothermiaNone
}

// OtherMedications lists the drugs offered for free logging, sorted.
func OtherMedications() []string {
	return []string{
		"Adenosine", "Adrenaline 1:1000", "Adrenaline 1:10,000", "Amiodarone (Further Dose)",
		"Atropine", "Calcium chloride", "Glucose", "Hartmann's solution", "Magnesium sulphate",
		"Midazolam", "Naloxone", "Potassium chloride", "Sodium bicarbonate",
		"Sodium chloride", "Tranexamic acid",
	}
}
