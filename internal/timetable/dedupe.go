package timetable

import "sort"

// EntitySets holds the distinct entity names referenced by a batch,
// destined for bulk insertion before any lesson or availability row
// resolves them by name. Matching is exact: case and whitespace variants
// produce distinct entities.
type EntitySets struct {
	Rooms    []string
	Groups   []string
	Teachers []string
}

// Dedupe collects every distinct room, group and teacher name across the
// batch's multi-valued fields. Output order is sorted so repeated runs
// over shuffled input produce identical sets.
func Dedupe(records []RawRecord) EntitySets {
	rooms := map[string]struct{}{}
	groups := map[string]struct{}{}
	teachers := map[string]struct{}{}

	for _, record := range records {
		for _, room := range record.Rooms {
			rooms[room] = struct{}{}
		}
		for _, group := range record.Groups {
			groups[group] = struct{}{}
		}
		for _, teacher := range record.Teachers {
			teachers[teacher] = struct{}{}
		}
	}

	return EntitySets{
		Rooms:    sortedKeys(rooms),
		Groups:   sortedKeys(groups),
		Teachers: sortedKeys(teachers),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
