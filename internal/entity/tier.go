package entity

import "fmt"

// Tier is an ordered outreach-priority band. Lower values are more urgent.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
)

var tierLabels = map[Tier]string{
	Tier1: "Tier 1 - AEP Urgent",
	Tier2: "Tier 2 - Strategic",
	Tier3: "Tier 3 - Proven Vertical",
	Tier4: "Tier 4 - Exploratory",
}

// Label returns the display label written to the workspace.
func (t Tier) Label() string {
	if label, ok := tierLabels[t]; ok {
		return label
	}
	return fmt.Sprintf("Tier %d", int(t))
}

func (t Tier) String() string { return t.Label() }

// Valid reports whether t is one of the four defined bands.
func (t Tier) Valid() bool {
	_, ok := tierLabels[t]
	return ok
}

// TierLabels lists all tier labels in band order.
func TierLabels() []string {
	return []string{Tier1.Label(), Tier2.Label(), Tier3.Label(), Tier4.Label()}
}
