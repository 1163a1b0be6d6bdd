package chapters

import "slices"

// MangaPlusGroup is the aggregator scanlation group whose uploads carry no
// page images
const MangaPlusGroup = 9097

// Record is one chapter upload as listed by the manga endpoint
type Record struct {
	ID     string
	Number Number
	Groups []int
	Views  int
}

// SourceGroup returns the first listed group, or 0 when there is none
func (r Record) SourceGroup() int {
	if len(r.Groups) == 0 {
		return 0
	}
	return r.Groups[0]
}

// Entry maps a chapter number to the upload chosen for it
type Entry struct {
	Number Number
	ID     string
}

// CanonicalMap holds one entry per chapter number, ascending by number
type CanonicalMap []Entry

// IDs returns the chosen upload ids in chapter order
func (m CanonicalMap) IDs() []string {
	ids := make([]string, len(m))
	for i, e := range m {
		ids[i] = e.ID
	}
	return ids
}

// Resolve picks one upload per chapter number. Records without a number or
// from excludedGroup are skipped. The first remaining record for a number
// wins unless a later one has strictly more views.
func Resolve(records []Record, excludedGroup int) CanonicalMap {
	type candidate struct {
		entry Entry
		views int
	}

	index := make(map[string]int)
	var candidates []candidate

	for _, r := range records {
		if !r.Number.Valid() {
			continue
		}
		if r.SourceGroup() == excludedGroup {
			continue
		}

		key := r.Number.String()
		i, seen := index[key]
		if !seen {
			index[key] = len(candidates)
			candidates = append(candidates, candidate{
				entry: Entry{Number: r.Number, ID: r.ID},
				views: r.Views,
			})
			continue
		}

		if r.Views > candidates[i].views {
			candidates[i] = candidate{
				entry: Entry{Number: r.Number, ID: r.ID},
				views: r.Views,
			}
		}
	}

	resolved := make(CanonicalMap, len(candidates))
	for i, c := range candidates {
		resolved[i] = c.entry
	}
	slices.SortStableFunc(resolved, func(a, b Entry) int {
		return a.Number.Cmp(b.Number)
	})

	return resolved
}
