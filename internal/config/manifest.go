package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"autograde/internal/errors"
)

// Requirement types accepted in manifests.
const (
	RequirementDiff     = "diff"
	RequirementUnitTest = "unit_test"
	RequirementQuery    = "query"
	RequirementDocs     = "docs"
)

// Match policies accepted in query requirements.
const (
	PolicyAtLeastOnce = "at_least_once"
	PolicyExactly     = "exactly"
	PolicyNone        = "none"
)

// Manifest describes one assignment: which requirements to grade and how
// many points each is worth. Manifests are TOML or YAML by file extension.
type Manifest struct {
	Assignment   string        `toml:"assignment" yaml:"assignment"`
	Requirements []Requirement `toml:"requirements" yaml:"requirements"`
}

// Requirement is one graded requirement. Fields beyond name, type and
// out_of apply only to particular requirement types.
type Requirement struct {
	Name  string  `toml:"name" yaml:"name"`
	Type  string  `toml:"type" yaml:"type"`
	OutOf float64 `toml:"out_of" yaml:"out_of"`

	// diff
	File       string     `toml:"file" yaml:"file"`
	IgnoreCase bool       `toml:"ignore_case" yaml:"ignore_case"`
	Cases      [][]string `toml:"cases" yaml:"cases"`

	// unit_test
	TestFiles     []string `toml:"test_files" yaml:"test_files"`
	ExpectedTests []string `toml:"expected_tests" yaml:"expected_tests"`

	// docs (zero penalty means the default)
	Files   []string `toml:"files" yaml:"files"`
	Penalty float64  `toml:"penalty" yaml:"penalty"`

	// query (File above names the target)
	Query *QuerySpec `toml:"query" yaml:"query"`
}

// QuerySpec configures a structural query requirement. Every non-empty
// selector contributes one predicate; several intersect.
type QuerySpec struct {
	Invocation      string `toml:"invocation" yaml:"invocation"`
	Declaration     string `toml:"declaration" yaml:"declaration"`
	DeclarationKind string `toml:"declaration_kind" yaml:"declaration_kind"`
	Literal         string `toml:"literal" yaml:"literal"`
	Control         string `toml:"control" yaml:"control"`
	Recursive       bool   `toml:"recursive" yaml:"recursive"`

	Policy string `toml:"policy" yaml:"policy"`
	Count  int    `toml:"count" yaml:"count"`
	Reason string `toml:"reason" yaml:"reason"`
}

// LoadManifest reads and validates an assignment manifest. The format is
// chosen by extension: .toml, or .yaml/.yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.NotFound, "reading manifest "+path, err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.New(errors.ConfigError, "parsing manifest "+path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.New(errors.ConfigError, "parsing manifest "+path, err)
		}
	default:
		return nil, errors.Newf(errors.ConfigError,
			"unsupported manifest format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest for problems best caught before any grading
// starts.
func (m *Manifest) Validate() error {
	if len(m.Requirements) == 0 {
		return errors.New(errors.ConfigError, "manifest has no requirements", nil)
	}
	for i, r := range m.Requirements {
		where := fmt.Sprintf("requirement %d (%s)", i+1, r.Name)
		if r.Name == "" {
			return errors.Newf(errors.ConfigError, "requirement %d has no name", i+1)
		}
		if r.OutOf <= 0 {
			return errors.Newf(errors.ConfigError, "%s: out_of must be positive", where)
		}
		switch r.Type {
		case RequirementDiff:
			if r.File == "" {
				return errors.Newf(errors.ConfigError, "%s: diff requirements need a file", where)
			}
			if len(r.Cases) == 0 {
				return errors.Newf(errors.ConfigError, "%s: diff requirements need cases", where)
			}
		case RequirementUnitTest:
			if len(r.TestFiles) == 0 {
				return errors.Newf(errors.ConfigError, "%s: unit_test requirements need test_files", where)
			}
		case RequirementDocs:
			if len(r.Files) == 0 {
				return errors.Newf(errors.ConfigError, "%s: docs requirements need files", where)
			}
			if r.Penalty < 0 {
				return errors.Newf(errors.ConfigError, "%s: penalty cannot be negative", where)
			}
		case RequirementQuery:
			if r.File == "" {
				return errors.Newf(errors.ConfigError, "%s: query requirements need a file", where)
			}
			if r.Query == nil {
				return errors.Newf(errors.ConfigError, "%s: query requirements need a query table", where)
			}
			if err := r.Query.validate(where); err != nil {
				return err
			}
		default:
			return errors.Newf(errors.ConfigError, "%s: unknown type %q", where, r.Type)
		}
	}
	return nil
}

func (q *QuerySpec) validate(where string) error {
	if q.Invocation == "" && q.Declaration == "" && q.DeclarationKind == "" &&
		q.Literal == "" && q.Control == "" && !q.Recursive {
		return errors.Newf(errors.ConfigError, "%s: query selects nothing", where)
	}
	switch q.Policy {
	case "", PolicyAtLeastOnce, PolicyNone:
	case PolicyExactly:
		if q.Count <= 0 {
			return errors.Newf(errors.ConfigError, "%s: exactly policy needs a positive count", where)
		}
	default:
		return errors.Newf(errors.ConfigError, "%s: unknown policy %q", where, q.Policy)
	}
	return nil
}
