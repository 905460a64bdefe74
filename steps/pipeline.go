package steps

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	om "github.com/cevaris/ordered_map"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/sqlsteps/constants"
	"github.com/relloyd/sqlsteps/helper"
	"github.com/xeipuuv/gojsonschema"
)

// pipelineSchema is the JSON schema that pipeline files must satisfy after conversion from YAML.
const pipelineSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["steps"],
  "additionalProperties": false,
  "properties": {
    "steps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1, "pattern": "^[A-Za-z0-9_.-]+$"},
          "source": {"type": "string"},
          "sql": {"type": "string"},
          "validation": {
            "type": "object",
            "required": ["query"],
            "additionalProperties": false,
            "properties": {
              "query": {"type": "string", "minLength": 1},
              "predicate": {"type": "string"},
              "onFail": {"type": "string", "enum": ["error", "warn"]},
              "reason": {"type": "string"}
            }
          }
        },
        "anyOf": [
          {"required": ["source"]},
          {"required": ["sql"]}
        ]
      }
    }
  }
}`

// Pipeline is the fixed, ordered list of steps.
type Pipeline struct {
	steps *om.OrderedMap // step name => Step, in execution order
}

type pipelineFile struct {
	Steps []Step `json:"steps"`
}

// NewPipeline builds a Pipeline from steps, in the order given.
// Step names must be unique and must not be the sentinel that selects every step.
func NewPipeline(steps []Step) (*Pipeline, error) {
	p := &Pipeline{steps: om.NewOrderedMap()}
	for _, s := range steps {
		if s.Name == "" {
			return nil, errors.New("pipeline step is missing a name")
		}
		if strings.EqualFold(s.Name, constants.StepNameAll) {
			return nil, errors.Errorf("step name %q is reserved", s.Name)
		}
		if _, ok := p.steps.Get(s.Name); ok {
			return nil, errors.Errorf("duplicate step name %q in pipeline", s.Name)
		}
		if s.Validation != nil {
			if err := s.Validation.Check(); err != nil {
				return nil, errors.Wrapf(err, "step %q", s.Name)
			}
		}
		p.steps.Set(s.Name, s)
	}
	return p, nil
}

// DefaultPipeline returns the finance revenue mapping pipeline:
// import the CSV from S3, check the raw data, build the mapped view, check it, then export.
func DefaultPipeline() *Pipeline {
	p, err := NewPipeline([]Step{
		{
			Name:   "import",
			Source: "02_import_from_s3.sql",
			Validation: &ValidationRule{
				Query:  "select count(*) from mapping_template_raw_CURSOR",
				OnFail: OnFailError,
				Reason: "zero rows after import",
			},
		},
		{Name: "quality_raw", Source: "03_data_quality_checks_raw.sql"},
		{
			Name:   "create_view",
			Source: "04_create_mapped_view.sql",
			Validation: &ValidationRule{
				Query:  "select count(*) from view_partner_finance_mapped",
				OnFail: OnFailWarn,
				Reason: "mapped view contains zero rows",
			},
		},
		{Name: "quality_merged", Source: "05_data_quality_checks_merged.sql"},
		{Name: "export", Source: "06_export_to_s3.sql"},
	})
	if err != nil {
		panic(err) // static definition
	}
	return p
}

// LoadPipeline reads a YAML or JSON pipeline definition from fileName.
func LoadPipeline(fileName string) (*Pipeline, error) {
	b, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read pipeline file %q", fileName)
	}
	p, err := ParsePipeline(b)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pipeline file %q", fileName)
	}
	return p, nil
}

// ParsePipeline converts YAML or JSON in b into a Pipeline after validating it against the pipeline schema.
func ParsePipeline(b []byte) (*Pipeline, error) {
	jsonData, err := yaml.YAMLToJSON(b)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert pipeline to JSON")
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(pipelineSchema), gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, errors.Wrap(err, "unable to validate pipeline")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, errors.Errorf("pipeline does not match schema: %v", strings.Join(msgs, "; "))
	}
	f := pipelineFile{}
	if err = json.Unmarshal(jsonData, &f); err != nil {
		return nil, errors.Wrap(err, "unable to parse pipeline")
	}
	return NewPipeline(f.Steps)
}

// Steps returns all steps in execution order.
func (p *Pipeline) Steps() []Step {
	retval := make([]Step, 0, p.steps.Len())
	iter := p.steps.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, kv.Value.(Step))
	}
	return retval
}

// Names returns the step names in execution order.
func (p *Pipeline) Names() []string {
	return helper.OrderedMapKeysToStringSlice(p.steps)
}

// Select returns every step for the sentinel "all", else the single named step.
func (p *Pipeline) Select(name string) ([]Step, error) {
	if name == "" || strings.EqualFold(name, constants.StepNameAll) {
		return p.Steps(), nil
	}
	s, ok := p.steps.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown step %q; choose one of: %v, %v", name, strings.Join(p.Names(), ", "), constants.StepNameAll)
	}
	return []Step{s.(Step)}, nil
}

// Yaml renders the pipeline in the pipeline file format.
func (p *Pipeline) Yaml() ([]byte, error) {
	return yaml.Marshal(pipelineFile{Steps: p.Steps()})
}
