package metadata

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Entry is one key/value pair of an OrderedMap
type Entry struct {
	Key   string
	Value interface{}
}

// OrderedMap is a JSON object that marshals its entries in slice order
type OrderedMap []Entry

// Get returns the value stored under key
func (m OrderedMap) Get(key string) (interface{}, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in order
func (m OrderedMap) Keys() []string {
	keys := make([]string, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the map as a JSON object preserving entry order
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalValue(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := marshalValue(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CompareKeys is the canonical key comparator: case-insensitive
// lexicographic order, ties broken case-sensitively.
func CompareKeys(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortEntries orders entries with the leading keys first, in the given
// order when present, followed by the remaining entries sorted with
// CompareKeys.
func SortEntries(entries []Entry, leading ...string) OrderedMap {
	rank := make(map[string]int, len(leading))
	for i, k := range leading {
		if _, ok := rank[k]; !ok {
			rank[k] = i
		}
	}

	sorted := make(OrderedMap, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iLead := rank[sorted[i].Key]
		rj, jLead := rank[sorted[j].Key]
		switch {
		case iLead && jLead:
			return ri < rj
		case iLead:
			return true
		case jLead:
			return false
		default:
			return CompareKeys(sorted[i].Key, sorted[j].Key) < 0
		}
	})
	return sorted
}

// OrderKeys returns keys reordered by priority: keys listed in priority
// come first in that sequence, the others follow in their original
// relative order.
func OrderKeys(keys []string, priority []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	ordered := make([]string, 0, len(keys))
	placed := make(map[string]bool, len(keys))
	for _, k := range priority {
		if present[k] && !placed[k] {
			ordered = append(ordered, k)
			placed[k] = true
		}
	}
	for _, k := range keys {
		if !placed[k] {
			ordered = append(ordered, k)
			placed[k] = true
		}
	}
	return ordered
}

// marshalValue encodes v without HTML escaping so URLs and comparison
// operators in version ranges survive unchanged.
func marshalValue(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
