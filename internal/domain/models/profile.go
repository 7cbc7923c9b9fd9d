package models

import "sort"

// Profiles maps profile id -> exclude snapshot, as stored under workspace-manager.profiles
type Profiles map[string]ExcludeMap

// ProfileSummary is one row of the profile panel
type ProfileSummary struct {
	ID       string `json:"id"`
	Selected bool   `json:"selected"`
}

// ProfileList is the profile panel content
type ProfileList struct {
	Profiles []ProfileSummary `json:"profiles"`
	Selected *string          `json:"selected"` // nil when no profile is selected
}

// Profile is a single stored snapshot
type Profile struct {
	ID       string     `json:"id"`
	Excludes ExcludeMap `json:"excludes"`
	Selected bool       `json:"selected"`
}

// IDs returns the profile ids in sorted order
func (p Profiles) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
