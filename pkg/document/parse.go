package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a supported structured text syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned by Parse for an unknown
// format name.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatForPath picks a format from the file extension. Unknown
// extensions are treated as YAML, which is a superset of JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// IsDocumentFile reports whether the path has one of the
// extensions the harness parses.
func IsDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml", ".json", ".toml":
		return true
	}
	return false
}

// Parse decodes data in the given format. An empty document
// yields a Null node. The returned error message carries the
// parser's own description of the failure.
func Parse(data []byte, format Format) (Node, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	case FormatTOML:
		return parseTOML(data)
	}
	return Node{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// ParseFile reads and parses path, choosing the format from its
// extension.
func ParseFile(path string) (Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Node{}, fmt.Errorf("file not found: %s", path)
		}
		return Node{}, fmt.Errorf("unexpected error: %w", err)
	}
	return Parse(data, FormatForPath(path))
}

func parseYAML(data []byte) (Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Node{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if root.Kind == 0 {
		return NewNull(), nil
	}
	n, err := fromYAML(&root)
	if err != nil {
		return Node{}, fmt.Errorf("YAML parse error: %w", err)
	}
	return n, nil
}

func fromYAML(y *yaml.Node) (Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return NewNull(), nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		if y.Alias == nil {
			return NewNull(), nil
		}
		return fromYAML(y.Alias)
	case yaml.SequenceNode:
		items := make([]Node, 0, len(y.Content))
		for _, c := range y.Content {
			it, err := fromYAML(c)
			if err != nil {
				return Node{}, err
			}
			items = append(items, it)
		}
		return NewSequence(items...), nil
	case yaml.MappingNode:
		var merged, explicit []Entry
		for i := 0; i+1 < len(y.Content); i += 2 {
			val, err := fromYAML(y.Content[i+1])
			if err != nil {
				return Node{}, err
			}
			if y.Content[i].ShortTag() == "!!merge" {
				m, err := mergeEntries(val)
				if err != nil {
					return Node{}, err
				}
				merged = append(m, merged...)
				continue
			}
			explicit = append(explicit, Entry{
				Key:   y.Content[i].Value,
				Value: val,
			})
		}
		// Later entries win in NewMapping: explicit keys override
		// merged ones, and earlier merge sources override later.
		return NewMapping(append(merged, explicit...)...), nil
	case yaml.ScalarNode:
		return scalarFromYAML(y)
	}
	return NewNull(), nil
}

// mergeEntries returns the entries a "<<" key splices in. The
// value is a mapping or a sequence of mappings; entries of
// earlier mappings come last so they take precedence.
func mergeEntries(v Node) ([]Entry, error) {
	switch v.Kind() {
	case Mapping:
		return v.Entries(), nil
	case Sequence:
		var out []Entry
		for _, it := range v.Items() {
			if !it.IsMapping() {
				return nil, errors.New("merge key needs a mapping or a sequence of mappings")
			}
			out = append(it.Entries(), out...)
		}
		return out, nil
	}
	return nil, errors.New("merge key needs a mapping or a sequence of mappings")
}

func scalarFromYAML(y *yaml.Node) (Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return NewNull(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return Node{}, err
		}
		return NewBool(b), nil
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return NewInt(i), nil
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return Node{}, err
		}
		return NewFloat(f), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return Node{}, err
		}
		return NewFloat(f), nil
	}
	return NewString(y.Value), nil
}

func parseJSON(data []byte) (Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewNull(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Node{}, fmt.Errorf("JSON parse error: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Node{}, fmt.Errorf(
			"JSON parse error: trailing data after document",
		)
	}
	return FromValue(v), nil
}

func parseTOML(data []byte) (Node, error) {
	v := map[string]any{}
	if _, err := toml.Decode(string(data), &v); err != nil {
		return Node{}, fmt.Errorf("TOML parse error: %w", err)
	}
	return FromValue(v), nil
}
