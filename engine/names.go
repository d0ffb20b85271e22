/*
names.go - User display-name resolution

PURPOSE:
  Maps user IDs to display names for output labeling. Name resolution has
  no effect on any computed figure; it only fills the UserName field of
  the result record.

DESIGN:
  The roster is an explicit dependency injected at call time as a
  precomputed id->name mapping. The engine never fetches data itself;
  whoever loaded the snapshot builds the table with NamesFromUsers.

FALLBACK:
  Unknown (or blank-named) users fall back to a truncated form of their
  id so output rows are still distinguishable.
*/
package engine

// fallbackIDLength is how much of an unknown user's id is shown.
const fallbackIDLength = 8

// NameResolver resolves a user id to a display name.
type NameResolver interface {
	DisplayName(id UserID) string
}

// NameTable is a map-backed NameResolver.
type NameTable map[UserID]string

// DisplayName returns the mapped name, or a truncated id when unknown.
func (t NameTable) DisplayName(id UserID) string {
	if name, ok := t[id]; ok && name != "" {
		return name
	}
	return truncateID(id)
}

// NamesFromUsers builds a NameTable from a user roster snapshot.
func NamesFromUsers(users []User) NameTable {
	t := make(NameTable, len(users))
	for _, u := range users {
		t[u.ID] = u.Name
	}
	return t
}

func truncateID(id UserID) string {
	s := string(id)
	if len(s) <= fallbackIDLength {
		return s
	}
	return s[:fallbackIDLength]
}
