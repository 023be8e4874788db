// Package css parses the small CSS subset the capture renderer understands:
// inline style attributes and simple element/class rules from <style> blocks.
// Declarations drive layout metrics and page-break directives.
package css

import (
	"errors"
	"strings"
)

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule represents a CSS rule with its selectors
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Stylesheet represents a parsed stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseDeclarations parses a declaration block such as the contents of a
// style attribute ("margin: 4px; page-break-before: always").
func ParseDeclarations(declarationsStr string) []Declaration {
	declarationStrings := strings.Split(declarationsStr, ";")
	result := make([]Declaration, 0, len(declarationStrings))

	for _, declStr := range declarationStrings {
		declStr = strings.TrimSpace(declStr)
		if declStr == "" {
			continue
		}

		parts := strings.SplitN(declStr, ":", 2)
		if len(parts) != 2 {
			continue
		}

		property := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}

		result = append(result, Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}

	return result
}

// ParseString parses stylesheet text into rules. Invalid rules are skipped.
func ParseString(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}

	content = removeComments(content)
	for _, ruleStr := range splitRules(content) {
		rule, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		sheet.Rules = append(sheet.Rules, rule)
	}

	return sheet, nil
}

// Lookup returns the value of property in decls, honoring !important, or ""
// when absent. Later declarations win over earlier ones of equal weight.
func Lookup(decls []Declaration, property string) string {
	value := ""
	important := false
	for _, d := range decls {
		if d.Property != property {
			continue
		}
		if d.Important || !important {
			value = d.Value
			important = important || d.Important
		}
	}
	return value
}

// Match returns the declarations from the stylesheet that apply to an
// element with the given tag and class list, in rule order. Only element
// and .class selectors are supported.
func (s *Stylesheet) Match(tag string, classes []string) []Declaration {
	if s == nil {
		return nil
	}
	var out []Declaration
	for _, rule := range s.Rules {
		for _, sel := range rule.Selectors {
			if selectorMatches(sel, tag, classes) {
				out = append(out, rule.Declarations...)
				break
			}
		}
	}
	return out
}

func selectorMatches(sel, tag string, classes []string) bool {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return false
	}
	if strings.HasPrefix(sel, ".") {
		want := sel[1:]
		for _, c := range classes {
			if c == want {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(sel, tag)
}

// parseRule parses a single CSS rule
func parseRule(ruleStr string) (Rule, error) {
	parts := strings.SplitN(ruleStr, "{", 2)
	if len(parts) != 2 {
		return Rule{}, errors.New("invalid rule format")
	}

	selectorStr := strings.TrimSpace(parts[0])
	declarationsStr := strings.TrimSuffix(strings.TrimSpace(parts[1]), "}")

	selectors := parseSelectors(selectorStr)
	if len(selectors) == 0 {
		return Rule{}, errors.New("no selectors found")
	}

	return Rule{
		Selectors:    selectors,
		Declarations: ParseDeclarations(declarationsStr),
	}, nil
}

// parseSelectors parses CSS selectors
func parseSelectors(selectorStr string) []string {
	selectors := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)
		if selector != "" {
			result = append(result, selector)
		}
	}

	return result
}

// removeComments removes CSS comments
func removeComments(content string) string {
	var result strings.Builder
	i := 0

	for i < len(content) {
		if i+1 < len(content) && content[i] == '/' && content[i+1] == '*' {
			commentEnd := strings.Index(content[i+2:], "*/")
			if commentEnd == -1 {
				break
			}
			i += commentEnd + 4
		} else {
			result.WriteByte(content[i])
			i++
		}
	}

	return result.String()
}

// splitRules splits stylesheet content into individual rules
func splitRules(content string) []string {
	var rules []string
	var currentRule strings.Builder
	braceCount := 0

	for i := 0; i < len(content); i++ {
		char := content[i]

		if char == '{' {
			braceCount++
		} else if char == '}' {
			braceCount--

			if braceCount == 0 {
				currentRule.WriteByte(char)
				rules = append(rules, currentRule.String())
				currentRule.Reset()
				continue
			}
		}

		if braceCount > 0 || !isWhitespace(char) {
			currentRule.WriteByte(char)
		}
	}

	return rules
}

// isWhitespace checks if a character is whitespace
func isWhitespace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}
