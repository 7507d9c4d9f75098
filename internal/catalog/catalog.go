// Package catalog loads the activity catalog the registry is seeded with.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/mergington-api/internal/models"
)

const schemaURL = "https://mergington.edu/schemas/catalog.schema.json"

//go:embed default.json
var defaultCatalog []byte

//go:embed schema.json
var catalogSchema []byte

// Loader parses and validates catalog documents.
type Loader struct {
	schema    *jsonschema.Schema
	validator *validator.Validate
	policy    *bluemonday.Policy
}

// NewLoader compiles the catalog schema.
func NewLoader(validate *validator.Validate) (*Loader, error) {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("failed to add catalog schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}

	return &Loader{
		schema:    schema,
		validator: validate,
		policy:    bluemonday.StrictPolicy(),
	}, nil
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func (l *Loader) Load(path string) ([]models.Activity, error) {
	if strings.TrimSpace(path) == "" {
		return l.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return l.Parse(data)
}

// Default returns the built-in Mergington High School catalog.
func (l *Loader) Default() ([]models.Activity, error) {
	return l.Parse(defaultCatalog)
}

// Parse validates a catalog document and returns its activities in document order.
func (l *Loader) Parse(data []byte) ([]models.Activity, error) {
	var document interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("invalid catalog json: %w", err)
	}
	if err := l.schema.Validate(document); err != nil {
		return nil, fmt.Errorf("catalog does not match schema: %w", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(data, &activities); err != nil {
		return nil, fmt.Errorf("invalid catalog json: %w", err)
	}

	seen := make(map[string]struct{}, len(activities))
	for i := range activities {
		activity := &activities[i]
		activity.Name = strings.TrimSpace(activity.Name)
		activity.Description = l.stripMarkup(activity.Description)
		activity.Schedule = l.stripMarkup(activity.Schedule)
		for j, email := range activity.Participants {
			activity.Participants[j] = strings.TrimSpace(email)
		}
		if activity.Participants == nil {
			activity.Participants = []string{}
		}

		if err := l.validator.Struct(activity); err != nil {
			return nil, fmt.Errorf("invalid activity %q: %w", activity.Name, err)
		}
		if _, dup := seen[activity.Name]; dup {
			return nil, fmt.Errorf("duplicate activity %q", activity.Name)
		}
		seen[activity.Name] = struct{}{}
	}

	return activities, nil
}

// stripMarkup removes tags and leaves plain, unescaped text.
func (l *Loader) stripMarkup(value string) string {
	value = strings.TrimSpace(value)
	for i := 0; i < 3; i++ {
		next := strings.TrimSpace(html.UnescapeString(l.policy.Sanitize(value)))
		if next == value {
			break
		}
		value = next
	}
	return value
}
