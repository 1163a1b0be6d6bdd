package chapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// MinPages is the page count below which fractional chapters are dropped
// from the chart
const MinPages = 10

// PageCount is the number of story pages recorded for a chapter
type PageCount struct {
	Number Number
	Pages  int
}

// PageCounts is the cached chapter to page count mapping. It encodes as a
// JSON object keyed by decimal chapter numbers in ascending order.
type PageCounts []PageCount

// Get returns the page count for n
func (p PageCounts) Get(n Number) (int, bool) {
	for _, pc := range p {
		if pc.Number.Equal(n) {
			return pc.Pages, true
		}
	}
	return 0, false
}

// Sorted returns a copy ordered ascending by chapter number
func (p PageCounts) Sorted() PageCounts {
	sorted := slices.Clone(p)
	slices.SortStableFunc(sorted, func(a, b PageCount) int {
		return a.Number.Cmp(b.Number)
	})
	return sorted
}

// MarshalJSON implements json.Marshaler
func (p PageCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pc := range p.Sorted() {
		if !pc.Number.Valid() {
			return nil, fmt.Errorf("page count entry %d has no chapter number", i)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pc.Number.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", pc.Pages)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Keys such as "1.0" are
// accepted; two keys naming the same number are an error.
func (p *PageCounts) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode page counts: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("failed to decode page counts: expected an object")
	}

	counts := make(PageCounts, 0, len(raw))
	seen := make(map[string]string, len(raw))
	for key, pages := range raw {
		n, err := NewNumber(key)
		if err != nil {
			return err
		}
		if !n.Valid() {
			return fmt.Errorf("empty chapter number key")
		}
		if prev, dup := seen[n.String()]; dup {
			return fmt.Errorf("duplicate chapter number: %q and %q", prev, key)
		}
		seen[n.String()] = key
		counts = append(counts, PageCount{Number: n, Pages: pages})
	}

	*p = counts.Sorted()
	return nil
}

// Point is one plotted chapter
type Point struct {
	Number Number
	Pages  int
}

// Series is the filtered data plotted for a title, ascending by number
type Series []Point

// XValues returns chapter numbers as floats
func (s Series) XValues() []float64 {
	xs := make([]float64, len(s))
	for i, pt := range s {
		xs[i] = pt.Number.Float64()
	}
	return xs
}

// YValues returns page counts as floats
func (s Series) YValues() []float64 {
	ys := make([]float64, len(s))
	for i, pt := range s {
		ys[i] = float64(pt.Pages)
	}
	return ys
}

// Filter drops fractional chapters with fewer than MinPages pages, which are
// usually extras or announcements. The result is ascending by number.
func Filter(counts PageCounts) Series {
	series := make(Series, 0, len(counts))
	for _, pc := range counts.Sorted() {
		if !pc.Number.IsIntegral() && pc.Pages < MinPages {
			continue
		}
		series = append(series, Point(pc))
	}
	return series
}
