package config

import (
	"fmt"
	"strings"
)

// Issue is one problem found in the control panel. Field is the dotted
// "section.key" path.
type Issue struct {
	Field   string
	Message string
}

// ValidationError lists every problem found by Validate.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "invalid control panel"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "invalid control panel (%d problem(s))", len(err.Issues))
	for _, issue := range err.Issues {
		fmt.Fprintf(&b, "\n  %s: %s", issue.Field, issue.Message)
	}
	return b.String()
}

// Fields returns the offending field paths in report order.
func (err *ValidationError) Fields() []string {
	fields := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

type issueAdder func(field, message string)

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}
