// Package fixup repairs the injected import lines the transpiler leaves in
// emitted scripts and declarations.
//
// A file is tokenized into lines. Polyfill import lines and shim import
// lines are pulled out wherever they appear. Shebang lines are only
// recognized in the leading header, the run of shebang and injected
// import lines before the first body line; a "#!" line further down is
// program text. The file is rebuilt as the first shebang, the unique
// polyfill imports, the unique shim imports, then the remaining lines in
// their original order. Files without any injected import are left alone,
// even when their shebang is misplaced.
package fixup

import (
	"regexp"
	"strings"
)

var (
	shebangLine  = regexp.MustCompile(`^#!.+\r?\n$`)
	polyfillLine = regexp.MustCompile(`^import ".+?/_dnt\.polyfills\.js";\r?\n$`)
	shimLine     = regexp.MustCompile(`^import .*?dntShim from ".+?/_dnt\.shims\.js";\r?\n$`)
)

// Artifact is a tokenized text file
type Artifact struct {
	Shebang   string
	Polyfills []string
	Shims     []string
	Body      []string
}

// Parse splits content into its injected lines and body. Only
// newline-terminated lines are recognized as injected lines.
func Parse(content string) *Artifact {
	a := &Artifact{}
	seenPolyfills := make(map[string]bool)
	seenShims := make(map[string]bool)

	header := true
	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		switch {
		case header && shebangLine.MatchString(line):
			if a.Shebang == "" {
				a.Shebang = line
			}
		case polyfillLine.MatchString(line):
			if !seenPolyfills[line] {
				seenPolyfills[line] = true
				a.Polyfills = append(a.Polyfills, line)
			}
		case shimLine.MatchString(line):
			if !seenShims[line] {
				seenShims[line] = true
				a.Shims = append(a.Shims, line)
			}
		default:
			header = false
			a.Body = append(a.Body, line)
		}
	}
	return a
}

// HasInjectedImports reports whether any polyfill or shim import was found
func (a *Artifact) HasInjectedImports() bool {
	return len(a.Polyfills) > 0 || len(a.Shims) > 0
}

// String serializes the artifact in canonical order
func (a *Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.Shebang)
	for _, line := range a.Polyfills {
		b.WriteString(line)
	}
	for _, line := range a.Shims {
		b.WriteString(line)
	}
	for _, line := range a.Body {
		b.WriteString(line)
	}
	return b.String()
}

// Fix returns the canonical form of content and whether it differs
func Fix(content string) (string, bool) {
	artifact := Parse(content)
	if !artifact.HasInjectedImports() {
		return content, false
	}
	fixed := artifact.String()
	return fixed, fixed != content
}
