package evaluate

import (
	"fmt"
	"strings"
)

// Render substitutes {name} slots in text. "{{" and "}}" produce literal
// braces; a brace that does not open a well-formed slot is kept as written.
// A slot missing from values is an error.
func Render(text string, values map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			out.WriteByte('{')
			i++
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			out.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 || !isSlotName(text[i+1:i+1+end]) {
				out.WriteByte(c)
				continue
			}
			name := text[i+1 : i+1+end]
			value, ok := values[name]
			if !ok {
				return "", fmt.Errorf("unknown template slot {%s}", name)
			}
			out.WriteString(value)
			i += end + 1
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), nil
}

// Slots lists the slot names referenced by text in order of appearance.
func Slots(text string) []string {
	var names []string
	seen := map[string]struct{}{}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		if i+1 < len(text) && text[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(text[i+1:], '}')
		if end < 0 {
			break
		}
		name := text[i+1 : i+1+end]
		if !isSlotName(name) {
			continue
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			names = append(names, name)
		}
		i += end + 1
	}
	return names
}

func isSlotName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
