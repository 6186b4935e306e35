package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/workflow"
)

// Resolver binds the names used in definition files.
type Resolver struct {
	// Setups maps setup names to procedures.
	Setups map[string]workflow.SetupFunc

	// Validators lists the known validator names. When empty,
	// validator names are not checked.
	Validators []string

	// Assertions rejects check types it does not know. When nil,
	// check types are not checked.
	Assertions TypeChecker
}

// TypeChecker reports the first assertion type in a definition
// that has no evaluator.
type TypeChecker interface {
	UnknownType(d assertion.Definition) (string, bool)
}

// definitionFile is the on-disk structure of a definition file
// (JSON or YAML).
type definitionFile struct {
	Version string           `json:"version" yaml:"version"`
	Tests   []fileDefinition `json:"tests" yaml:"tests"`
}

type fileDefinition struct {
	Name        string                       `json:"name" yaml:"name"`
	Description string                       `json:"description" yaml:"description"`
	Category    string                       `json:"category" yaml:"category"`
	Timeout     timeout                      `json:"timeout" yaml:"timeout"`
	MaxTurns    int                          `json:"max_turns" yaml:"max_turns"`
	After       string                       `json:"after" yaml:"after"`
	Setup       string                       `json:"setup" yaml:"setup"`
	Prompt      workflow.Prompt              `json:"prompt" yaml:"prompt"`
	Validator   *workflow.Invocation         `json:"validator" yaml:"validator"`
	Checks      []workflow.DocumentAssertion `json:"checks" yaml:"checks"`
}

// timeout accepts a number of seconds or a Go duration string.
type timeout time.Duration

func parseTimeout(raw string) (timeout, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return timeout(time.Duration(secs * float64(time.Second))), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	return timeout(d), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *timeout) UnmarshalYAML(n *yaml.Node) error {
	v, err := parseTimeout(n.Value)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *timeout) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	v, err := parseTimeout(raw)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// LoadDefinitionsFromFile reads a JSON or YAML definition file
// and registers each definition into reg.
func LoadDefinitionsFromFile(
	reg Registry,
	path string,
	res Resolver,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf(
			"failed to read definitions file %s: %w",
			path, err,
		)
	}

	return loadDefinitionsFromBytes(reg, data, path, res)
}

// LoadDefinitionsFromDir loads all .json and .yaml/.yml
// definition files from a directory in name order. It does not
// recurse into subdirectories.
func LoadDefinitionsFromDir(
	reg Registry,
	dir string,
	res Resolver,
) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf(
			"failed to read directory %s: %w", dir, err,
		)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		p := filepath.Join(dir, entry.Name())
		if err := LoadDefinitionsFromFile(reg, p, res); err != nil {
			return fmt.Errorf(
				"failed to load %s: %w", p, err,
			)
		}
	}

	return nil
}

// loadDefinitionsFromBytes decodes a definition file, resolves
// its names and registers its definitions.
func loadDefinitionsFromBytes(
	reg Registry,
	data []byte,
	source string,
	res Resolver,
) error {
	var file definitionFile
	var err error
	if strings.EqualFold(filepath.Ext(source), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return fmt.Errorf(
			"failed to parse definitions from %s: %w",
			source, err,
		)
	}

	for _, fd := range file.Tests {
		def, err := res.resolve(fd)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		if err := reg.Register(def); err != nil {
			return fmt.Errorf(
				"definition %s from %s: %w",
				fd.Name, source, err,
			)
		}
	}

	return nil
}

func (res Resolver) resolve(fd fileDefinition) (workflow.Definition, error) {
	def := workflow.Definition{
		Name:        fd.Name,
		Description: fd.Description,
		Category:    fd.Category,
		Timeout:     time.Duration(fd.Timeout),
		MaxTurns:    fd.MaxTurns,
		After:       fd.After,
		SetupName:   fd.Setup,
		Prompt:      fd.Prompt,
		Validator:   fd.Validator,
		Checks:      fd.Checks,
	}

	if fd.Setup != "" {
		setup, ok := res.Setups[fd.Setup]
		if !ok {
			return def, fmt.Errorf(
				"test %s: unknown setup %q (available: %s)",
				fd.Name, fd.Setup, strings.Join(sortedKeys(res.Setups), ", "),
			)
		}
		def.Setup = setup
	}

	if fd.Validator != nil && len(res.Validators) > 0 &&
		!contains(res.Validators, fd.Validator.Name) {
		return def, fmt.Errorf(
			"test %s: unknown validator %q", fd.Name, fd.Validator.Name,
		)
	}

	if res.Assertions != nil {
		for i, c := range fd.Checks {
			if t, bad := res.Assertions.UnknownType(c.Definition); bad {
				return def, fmt.Errorf(
					"test %s: check %d: unknown assertion type %q", fd.Name, i, t,
				)
			}
		}
	}

	return def, nil
}

func sortedKeys(m map[string]workflow.SetupFunc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
