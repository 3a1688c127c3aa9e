// Package locator describes how to find an element on a rendered page.
//
// A Locator is only a (strategy, selector) pair. It is resolved against the
// live page every time it is used and never remembers what it matched.
package locator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Strategy is the selector language a Locator is written in
type Strategy string

// Supported strategies
const (
	ByID    Strategy = "id"
	ByXPath Strategy = "xpath"
	ByCSS   Strategy = "css"
)

// ErrUnsafeInput is returned when caller-supplied text cannot be embedded in a selector
var ErrUnsafeInput = errors.New("unsafe selector input")

// Locator identifies zero or one element at evaluation time
type Locator struct {
	Strategy Strategy
	Value    string
}

// ID locates an element by its id attribute
func ID(id string) Locator {
	return Locator{Strategy: ByID, Value: id}
}

// XPath locates an element by an XPath expression
func XPath(expr string) Locator {
	return Locator{Strategy: ByXPath, Value: expr}
}

// CSS locates an element by a CSS selector
func CSS(selector string) Locator {
	return Locator{Strategy: ByCSS, Value: selector}
}

// Selector renders the locator in playwright selector syntax
func (l Locator) Selector() string {
	return string(l.Strategy) + "=" + l.Value
}

// String describes the locator for logs and error messages
func (l Locator) String() string {
	return fmt.Sprintf("By.%s(%q)", l.Strategy, l.Value)
}

// IsZero reports whether the locator was never set
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

// LinkByText locates an anchor whose text equals text exactly.
// The text is quoted as an XPath literal, so quotes in product names are safe.
func LinkByText(text string) (Locator, error) {
	lit, err := XPathLiteral(text)
	if err != nil {
		return Locator{}, err
	}
	return XPath("//a[text()=" + lit + "]"), nil
}

// XPathLiteral quotes s as an XPath 1.0 string literal.
//
// XPath 1.0 has no escape sequences, so a string holding both quote kinds is
// expressed as a concat() of pieces.
func XPathLiteral(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: invalid UTF-8 %q", ErrUnsafeInput, s)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: control character %U", ErrUnsafeInput, r)
		}
	}

	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	}

	parts := strings.Split(s, "'")
	args := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			args = append(args, `"'"`)
		}
		if p != "" {
			args = append(args, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")", nil
}
