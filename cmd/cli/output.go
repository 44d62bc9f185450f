package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	outputFormatJSONConstant          = "json"
	outputFormatYAMLConstant          = "yaml"
	unsupportedOutputTemplateConstant = "unsupported output format: %s"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
)

// OutputFormat selects the encoding of structured command results.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatJSON OutputFormat = OutputFormat(outputFormatJSONConstant)
	OutputFormatYAML OutputFormat = OutputFormat(outputFormatYAMLConstant)
)

// ParseOutputFormat normalizes a configured output format.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case OutputFormatJSON, "":
		return OutputFormatJSON, nil
	case OutputFormatYAML:
		return OutputFormatYAML, nil
	default:
		return "", fmt.Errorf(unsupportedOutputTemplateConstant, value)
	}
}

func renderResult(writer io.Writer, format OutputFormat, value any) error {
	switch format {
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(value); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(value)
	}
}

func renderText(writer io.Writer, text string) error {
	_, writeError := io.WriteString(writer, text)
	return writeError
}
