// Package display holds the format-neutral view of command results that
// the text and terminal renderers draw.
package display

// Field is one labelled value of a result summary
type Field struct {
	Label string
	Value string
}

// List is a titled list of paths or short lines
type List struct {
	Title string
	Items []string
}

// Table is a header row plus data rows of equal width
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// DisplayResult is everything a renderer needs to draw one command result
type DisplayResult struct {
	Command string
	DryRun  bool
	Fields  []Field
	Table   *Table
	Lists   []List
}

// AddField appends a labelled value
func (r *DisplayResult) AddField(label, value string) {
	r.Fields = append(r.Fields, Field{Label: label, Value: value})
}

// AddList appends a list; empty lists are dropped
func (r *DisplayResult) AddList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	r.Lists = append(r.Lists, List{Title: title, Items: items})
}
