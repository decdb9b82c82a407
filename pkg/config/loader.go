package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/logger"
	"github.com/ajitpratap0/tabprep/pkg/steps"
)

// Pipeline is the content of a pipeline file
type Pipeline struct {
	Name    string        `yaml:"name,omitempty"`
	Logging logger.Config `yaml:"logging,omitempty"`
	Steps   []steps.Spec  `yaml:"steps"`
}

// Load loads a YAML file into v after environment variable substitution
func Load(filePath string, v interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", filePath)
	}
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}
	return nil
}

// LoadPipeline reads and validates a pipeline file
func LoadPipeline(filePath string) (*Pipeline, error) {
	var p Pipeline
	if err := Load(filePath, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParsePipeline decodes and validates pipeline YAML held in memory
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &p); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that the file lists at least one step and that every step
// builds
func (p *Pipeline) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New(errors.ErrorTypeConfig, "pipeline has no steps")
	}
	if _, err := steps.BuildAll(p.Steps); err != nil {
		return err
	}
	return nil
}

// Save writes v to a YAML file
func Save(filePath string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", filePath)
	}
	return nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default}
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		expr := content[start+2 : end]
		name, def, hasDefault := strings.Cut(expr, ":-")
		value := os.Getenv(name)
		if value == "" && hasDefault {
			value = def
		}
		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
