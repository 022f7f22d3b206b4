// Package questionnaire holds the step catalogue and the state machine that
// walks a respondent through it.
package questionnaire

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"complykit/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var defaultSteps []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Catalog is an immutable, validated list of steps
type Catalog struct {
	steps []model.Step
	index map[string]model.Question
}

// Default returns the built-in catalogue. It panics if the embedded file is
// invalid, which only a broken build can cause.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultSteps)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded step catalogue: %v", defaultErr))
	}
	return defaultCatalog
}

// LoadFile reads a catalogue from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML step list
func Parse(data []byte) (*Catalog, error) {
	var steps []model.Step
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&steps); err != nil {
		return nil, fmt.Errorf("failed to parse step catalogue: %w", err)
	}
	return NewCatalog(steps)
}

// NewCatalog validates steps and builds a catalogue from them
func NewCatalog(steps []model.Step) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("step catalogue is empty")
	}

	c := &Catalog{index: make(map[string]model.Question)}
	stepIDs := make(map[string]bool)

	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step without id")
		}
		if stepIDs[s.ID] {
			return nil, fmt.Errorf("duplicate step id %q", s.ID)
		}
		stepIDs[s.ID] = true

		for _, q := range s.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("step %q: question without id", s.ID)
			}
			if _, dup := c.index[q.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", q.ID)
			}
			if !q.Type.Valid() {
				return nil, fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
			}
			if q.Type.HasOptions() && len(q.Options) == 0 {
				return nil, fmt.Errorf("question %q: %s needs options", q.ID, q.Type)
			}
			if q.DependsOn != nil {
				// Dependencies must point backwards so a question's visibility
				// is settled before the respondent reaches it.
				dep, ok := c.index[q.DependsOn.QuestionID]
				if !ok {
					return nil, fmt.Errorf("question %q depends on unknown or later question %q", q.ID, q.DependsOn.QuestionID)
				}
				if dep.Type.HasOptions() && !containsOption(dep.Options, q.DependsOn.Value) {
					return nil, fmt.Errorf("question %q depends on %q = %q, which is not an option", q.ID, dep.ID, q.DependsOn.Value)
				}
			}
			c.index[q.ID] = q
		}
	}

	c.steps = steps
	return c, nil
}

// Steps returns the ordered steps
func (c *Catalog) Steps() []model.Step {
	return c.steps
}

// Len returns the number of steps
func (c *Catalog) Len() int {
	return len(c.steps)
}

// Step returns the step at index i
func (c *Catalog) Step(i int) model.Step {
	return c.steps[i]
}

// Question looks up a question by id
func (c *Catalog) Question(id string) (model.Question, bool) {
	q, ok := c.index[id]
	return q, ok
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
