package models

// DocumentVersion is the current schema version of the state document.
const DocumentVersion = 1

// Document is the complete application state, persisted wholesale as a
// single JSON document by the store.
type Document struct {
	Version  int        `json:"version"`
	Users    []User     `json:"users"`
	Families []Family   `json:"families"`
	Members  []Member   `json:"members"`
	Logs     []LogEntry `json:"logs"`
}

// NewDocument returns an empty document at the current schema version.
func NewDocument() *Document {
	return &Document{
		Version:  DocumentVersion,
		Users:    []User{},
		Families: []Family{},
		Members:  []Member{},
		Logs:     []LogEntry{},
	}
}

// EnsureDefaults repairs a freshly decoded document: nil slices become
// empty and a missing version is stamped with the current one.
func (d *Document) EnsureDefaults() {
	if d.Version == 0 {
		d.Version = DocumentVersion
	}
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Families == nil {
		d.Families = []Family{}
	}
	if d.Members == nil {
		d.Members = []Member{}
	}
	if d.Logs == nil {
		d.Logs = []LogEntry{}
	}
}

// UserByID finds a user by id, or nil.
func (d *Document) UserByID(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// UserByUsername finds a user by exact username, or nil.
func (d *Document) UserByUsername(username string) *User {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i]
		}
	}
	return nil
}

// FamilyByID finds a family by id, or nil.
func (d *Document) FamilyByID(id string) *Family {
	for i := range d.Families {
		if d.Families[i].ID == id {
			return &d.Families[i]
		}
	}
	return nil
}

// FamilyMember finds a member by id, scoped to the owning family. A member
// id from another family is treated as absent.
func (d *Document) FamilyMember(familyID, memberID string) *Member {
	for i := range d.Members {
		if d.Members[i].ID == memberID && d.Members[i].FamilyID == familyID {
			return &d.Members[i]
		}
	}
	return nil
}

// FamilyMembers returns deep copies of one family's members in stored
// order, safe to use after the store lock is released.
func (d *Document) FamilyMembers(familyID string) []Member {
	var out []Member
	for i := range d.Members {
		if d.Members[i].FamilyID == familyID {
			out = append(out, d.Members[i].Clone())
		}
	}
	return out
}

// FamilyLogs returns the log entries for one family in stored order
// (newest first by insertion).
func (d *Document) FamilyLogs(familyID string) []LogEntry {
	var out []LogEntry
	for _, entry := range d.Logs {
		if entry.FamilyID == familyID {
			out = append(out, entry)
		}
	}
	return out
}
