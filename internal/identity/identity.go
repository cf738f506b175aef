// Package identity extracts the keys that decide whether two rows describe the
// same candidate.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	emailPattern    = regexp.MustCompile(`(?i)[a-z0-9_.+-]+@[a-z0-9-]+\.[a-z0-9-.]+`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.|www\.)?linkedin\.com/in/[a-z0-9\-_/%]+`)
)

// Identity holds the first e-mail address and LinkedIn profile URL found in a
// piece of text, as written.
type Identity struct {
	Email    string
	LinkedIn string
}

// Empty reports whether neither identifier was found.
func (id Identity) Empty() bool {
	return id.Email == "" && id.LinkedIn == ""
}

// Keys returns the normalized membership keys of id.
func (id Identity) Keys() []string {
	var keys []string
	if id.Email != "" {
		keys = append(keys, EmailKey(id.Email))
	}
	if id.LinkedIn != "" {
		keys = append(keys, LinkedInKey(id.LinkedIn))
	}
	return keys
}

// Extract finds the first e-mail and LinkedIn URL in text.
func Extract(text string) Identity {
	var id Identity
	if match := emailPattern.FindString(text); match != "" {
		id.Email = strings.TrimRight(match, ".-")
	}
	if match := linkedInPattern.FindString(text); match != "" {
		id.LinkedIn = match
	}
	return id
}

// ExtractCells scans cells in order and keeps the first match of each kind.
func ExtractCells(cells []string) Identity {
	var id Identity
	for _, cell := range cells {
		found := Extract(cell)
		if id.Email == "" {
			id.Email = found.Email
		}
		if id.LinkedIn == "" {
			id.LinkedIn = found.LinkedIn
		}
		if id.Email != "" && id.LinkedIn != "" {
			break
		}
	}
	return id
}

// Keys returns every identity key found in any cell. A row may carry several
// e-mails or profiles; all of them count for membership.
func Keys(cells []string) []string {
	var keys []string
	for _, cell := range cells {
		for _, match := range emailPattern.FindAllString(cell, -1) {
			keys = append(keys, EmailKey(strings.TrimRight(match, ".-")))
		}
		for _, match := range linkedInPattern.FindAllString(cell, -1) {
			keys = append(keys, LinkedInKey(match))
		}
	}
	return keys
}

// EmailKey lower-cases an address.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LinkedInKey reduces a profile URL to "linkedin.com/in/<slug>".
func LinkedInKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	if i := strings.Index(key, "linkedin.com/"); i >= 0 {
		key = key[i:]
	}
	return strings.TrimRight(key, "/")
}

// CleanCell applies NFKC and collapses runs of whitespace.
func CleanCell(cell string) string {
	cell = norm.NFKC.String(cell)
	return strings.Join(strings.FieldsFunc(cell, unicode.IsSpace), " ")
}

// CleanRow returns a cleaned copy of cells.
func CleanRow(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = CleanCell(cell)
	}
	return out
}

// Set is a membership set of identity keys.
type Set struct {
	keys map[string]struct{}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{keys: map[string]struct{}{}}
}

// Add inserts normalized keys.
func (s *Set) Add(keys ...string) {
	for _, key := range keys {
		if key != "" {
			s.keys[key] = struct{}{}
		}
	}
}

// AddRow inserts every key found in cells.
func (s *Set) AddRow(cells []string) {
	s.Add(Keys(cells)...)
}

// ContainsAny reports whether any of keys is present.
func (s *Set) ContainsAny(keys ...string) bool {
	for _, key := range keys {
		if _, ok := s.keys[key]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of distinct keys.
func (s *Set) Len() int {
	return len(s.keys)
}
