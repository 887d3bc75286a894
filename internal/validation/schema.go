// Package validation checks page front matter against a JSON schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue is a single failed rule.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError lists every issue found in one payload.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from err.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// DefaultFrontMatterSchema accepts any keys but constrains the ones the
// generator reads.
func DefaultFrontMatterSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string", "minLength": 1},
			"slug":     map[string]any{"type": "string", "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
			"summary":  map[string]any{"type": "string"},
			"template": map[string]any{"type": "string"},
			"author":   map[string]any{"type": "string"},
			"draft":    map[string]any{"type": "boolean"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"additionalProperties": true,
	}
}

// LoadSchemaFile reads a JSON schema document from disk.
func LoadSchemaFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, path, err)
	}
	return schema, nil
}

// FrontMatterValidator validates raw front matter maps against a compiled
// schema. It is safe for concurrent use.
type FrontMatterValidator struct {
	schema *jsonschema.Schema
}

// NewFrontMatterValidator compiles schema; nil selects DefaultFrontMatterSchema.
func NewFrontMatterValidator(schema map[string]any) (*FrontMatterValidator, error) {
	if schema == nil {
		schema = DefaultFrontMatterSchema()
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &FrontMatterValidator{schema: compiled}, nil
}

// ValidateFrontMatter returns a *PayloadValidationError listing every issue.
func (v *FrontMatterValidator) ValidateFrontMatter(raw map[string]any) error {
	if v == nil || v.schema == nil {
		return nil
	}
	payload, err := normalizePayload(raw)
	if err != nil {
		return &PayloadValidationError{
			Issues: []ValidationIssue{{Message: err.Error()}},
			Cause:  err,
		}
	}
	if err := v.schema.Validate(payload); err != nil {
		issues := Issues(err)
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Location < issues[j].Location })
		return &PayloadValidationError{Issues: issues, Cause: err}
	}
	return nil
}

// normalizePayload converts YAML decoded values into the JSON shapes the
// validator understands: string keyed maps, float64 numbers and RFC 3339
// strings for times.
func normalizePayload(raw map[string]any) (any, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	encoded, err := json.Marshal(stringKeys(raw))
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	return out, nil
}

func stringKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = stringKeys(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = stringKeys(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = stringKeys(v)
		}
		return out
	default:
		return value
	}
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("frontmatter.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("frontmatter.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
