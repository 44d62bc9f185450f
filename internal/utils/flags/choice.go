// Package flags provides Cobra flag values shared by gitbridge commands.
package flags

import (
	"fmt"
	"strings"
)

const (
	choiceTypeNameConstant         = "choice"
	choicePlaceholderPrefix        = "<"
	choicePlaceholderSuffix        = ">"
	choiceSeparatorLiteral         = "|"
	choiceUsageEmptyTemplate       = "`%s`"
	choiceUsageFullTemplate        = "`%s` %s"
	choiceRejectedTemplateConstant = "invalid value %q, expected one of %s"
	choiceListSeparatorConstant    = ", "
)

// Choice is a pflag.Value accepting one of a fixed, case-insensitive set of options.
// The stored value is always the lowercase form of the matching option.
type Choice struct {
	value   string
	choices []string
}

// NewChoice constructs a Choice. An empty defaultChoice leaves the value unset.
func NewChoice(defaultChoice string, choices ...string) *Choice {
	return &Choice{
		value:   normalizeChoice(defaultChoice),
		choices: uniqueChoices(choices),
	}
}

// String returns the selected option.
func (choice *Choice) String() string {
	if choice == nil {
		return ""
	}
	return choice.value
}

// Set selects candidate when it matches one of the options.
func (choice *Choice) Set(candidate string) error {
	normalizedCandidate := normalizeChoice(candidate)
	for _, option := range choice.choices {
		if normalizeChoice(option) == normalizedCandidate {
			choice.value = normalizedCandidate
			return nil
		}
	}
	return fmt.Errorf(choiceRejectedTemplateConstant, candidate, strings.Join(choice.choices, choiceListSeparatorConstant))
}

// Type names the value kind in generated help.
func (choice *Choice) Type() string {
	return choiceTypeNameConstant
}

// Usage renders description prefixed with the options, the current value capitalized.
func (choice *Choice) Usage(description string) string {
	return FormatChoiceUsage(choice.value, choice.choices, description)
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := normalizeChoice(defaultChoice)
	displayed := uniqueChoices(choices)
	for index, option := range displayed {
		if len(normalizedDefault) > 0 && normalizeChoice(option) == normalizedDefault {
			displayed[index] = strings.ToUpper(option)
		}
	}

	placeholder := choicePlaceholderPrefix + strings.Join(displayed, choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// uniqueChoices trims options and drops blanks and case-insensitive duplicates, keeping order.
func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, option := range choices {
		trimmedOption := strings.TrimSpace(option)
		if len(trimmedOption) == 0 {
			continue
		}
		key := normalizeChoice(trimmedOption)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, trimmedOption)
	}
	return unique
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
