package models

import "time"

// Age groups for family members.
const (
	AgeGroupMinor  = "Minor"
	AgeGroupAdult  = "Adult"
	AgeGroupSenior = "Senior"
)

// Family groups the members managed by one or more heads of family.
// Members reference their family by id and live in the document's
// top-level member list.
type Family struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	HeadIDs []string `json:"headIds"`
}

// MultiHead reports whether the family has more than one head.
func (f *Family) MultiHead() bool {
	return len(f.HeadIDs) > 1
}

// Member is a cared-for person inside a family. Members do not log in.
type Member struct {
	ID          string       `json:"id"`
	FamilyID    string       `json:"familyId"`
	Name        string       `json:"name"`
	AgeGroup    string       `json:"ageGroup"`
	Phone       string       `json:"phone"`
	Medications []Medication `json:"medications"`
}

// MedicationByID finds a medication on this member by id, or nil.
func (m *Member) MedicationByID(id string) *Medication {
	for i := range m.Medications {
		if m.Medications[i].ID == id {
			return &m.Medications[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to use after the store lock is released.
func (m Member) Clone() Member {
	out := m
	out.Medications = make([]Medication, len(m.Medications))
	for i, med := range m.Medications {
		out.Medications[i] = med.Clone()
	}
	return out
}

// Medication is one scheduled medicine for a member. DoseTimes always has
// exactly TimesPerDay entries after normalization. Time is a legacy scalar
// dose time that older documents may carry instead of DoseTimes.
type Medication struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Dosage        string    `json:"dosage"`
	TimesPerDay   int       `json:"timesPerDay"`
	DoseTimes     []string  `json:"doseTimes"`
	Instructions  string    `json:"instructions,omitempty"`
	Supply        int       `json:"supply"`
	ConsumedCount int       `json:"consumedCount"`
	Time          string    `json:"time,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Clone returns a copy that shares nothing with the original.
func (m Medication) Clone() Medication {
	out := m
	out.DoseTimes = append([]string(nil), m.DoseTimes...)
	return out
}
