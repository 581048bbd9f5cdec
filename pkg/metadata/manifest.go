package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/spf13/afero"
)

// DefaultKeyOrder is the canonical priority of manifest top-level keys
var DefaultKeyOrder = []string{
	"name",
	"version",
	"description",
	"keywords",
	"homepage",
	"bugs",
	"license",
	"author",
	"contributors",
	"funding",
	"files",
	"type",
	"bin",
	"main",
	"module",
	"exports",
	"types",
	"man",
	"repository",
	"scripts",
	"config",
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"bundleDependencies",
	"optionalDependencies",
	"overrides",
	"engines",
	"os",
	"cpu",
	"libc",
	"devEngines",
	"private",
	"publishConfig",
}

// ModuleType is the value written to the manifest "type" field
const ModuleType = "module"

type field struct {
	key   string
	value json.RawMessage
}

// Manifest is a package descriptor whose top-level key order is tracked.
// Nested values are kept verbatim.
type Manifest struct {
	fields []field
}

// ParseManifest decodes a JSON object, keeping key order. A repeated key
// keeps its first position and its last value.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("manifest must be a JSON object")
	}

	m := &Manifest{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected manifest token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to read manifest value %q: %w", key, err)
		}
		m.setRaw(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after manifest object")
	}
	return m, nil
}

// Keys returns the top-level keys in order
func (m *Manifest) Keys() []string {
	keys := make([]string, len(m.fields))
	for i, f := range m.fields {
		keys[i] = f.key
	}
	return keys
}

// Get returns the raw JSON stored under key
func (m *Manifest) Get(key string) (json.RawMessage, bool) {
	for _, f := range m.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

// Set stores value under key. An existing key keeps its position, a new
// key is appended.
func (m *Manifest) Set(key string, value interface{}) error {
	raw, err := marshalValue(value)
	if err != nil {
		return fmt.Errorf("failed to encode manifest value %q: %w", key, err)
	}
	m.setRaw(key, raw)
	return nil
}

// Delete removes key if present
func (m *Manifest) Delete(key string) {
	for i, f := range m.fields {
		if f.key == key {
			m.fields = append(m.fields[:i], m.fields[i+1:]...)
			return
		}
	}
}

// Overlay applies the fragment on top of the manifest. The fragment owns
// its keys: absent fragment fields remove the corresponding manifest key.
// The "type" field is then forced to "module".
func (m *Manifest) Overlay(fragment *Fragment) error {
	if fragment != nil {
		for _, e := range fragment.Entries() {
			if e.Value == nil {
				m.Delete(e.Key)
				continue
			}
			if err := m.Set(e.Key, e.Value); err != nil {
				return err
			}
		}
	}
	return m.Set("type", ModuleType)
}

// Reorder sorts the top-level keys by keyOrder, keeping unknown keys in
// their current relative order after the known ones.
func (m *Manifest) Reorder(keyOrder []string) {
	ordered := OrderKeys(m.Keys(), keyOrder)
	byKey := make(map[string]json.RawMessage, len(m.fields))
	for _, f := range m.fields {
		byKey[f.key] = f.value
	}
	fields := make([]field, len(ordered))
	for i, k := range ordered {
		fields[i] = field{key: k, value: byKey[k]}
	}
	m.fields = fields
}

// Marshal encodes the manifest indented with tabs, followed by a newline
func (m *Manifest) Marshal() ([]byte, error) {
	if len(m.fields) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, f := range m.fields {
		key, err := marshalValue(f.key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte('\t')
		buf.Write(key)
		buf.WriteString(": ")
		if err := json.Indent(&buf, f.value, "\t", "\t"); err != nil {
			return nil, fmt.Errorf("failed to encode manifest value %q: %w", f.key, err)
		}
		if i < len(m.fields)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func (m *Manifest) setRaw(key string, value json.RawMessage) {
	for i, f := range m.fields {
		if f.key == key {
			m.fields[i].value = value
			return
		}
	}
	m.fields = append(m.fields, field{key: key, value: value})
}

// Refactor overlays the fragment onto manifest bytes and returns the
// canonical encoding. An empty keyOrder means DefaultKeyOrder.
func Refactor(data []byte, fragment *Fragment, keyOrder []string) ([]byte, error) {
	if len(keyOrder) == 0 {
		keyOrder = DefaultKeyOrder
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to parse manifest")
	}
	if err := m.Overlay(fragment); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to overlay manifest fragment")
	}
	m.Reorder(keyOrder)
	out, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifest, "failed to encode manifest")
	}
	return out, nil
}

// RefactorManifest rewrites the manifest at path with the fragment applied
// and keys ordered by keyOrder (DefaultKeyOrder when empty). The file is
// only written when its bytes change.
func RefactorManifest(fsys afero.Fs, path string, fragment *Fragment, keyOrder []string) error {
	logger := logging.GetLogger("metadata.manifest")

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to read manifest %s", path)
	}

	out, err := Refactor(data, fragment, keyOrder)
	if err != nil {
		return err
	}

	if bytes.Equal(out, data) {
		logger.Debug().Str("path", path).Msg("Manifest already canonical")
		return nil
	}

	if err := afero.WriteFile(fsys, path, out, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to write manifest %s", path)
	}
	logger.Info().Str("path", path).Msg("Manifest refactored")
	return nil
}
