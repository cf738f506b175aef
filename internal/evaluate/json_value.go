package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSONKind identifies the concrete type stored in a JSONValue.
type JSONKind int

const (
	JSONNull JSONKind = iota
	JSONString
	JSONNumber
	JSONBool
	JSONObject
	JSONArray
)

// JSONValue is one decoded value of an oracle reply.
type JSONValue struct {
	Kind   JSONKind
	String string
	Number float64
	Bool   bool
	Object map[string]JSONValue
	Array  []JSONValue
}

// UnmarshalJSON decodes a JSON value into the typed representation.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty json value")
	}
	switch trimmed[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		v.Kind = JSONObject
		v.Object = make(map[string]JSONValue, len(raw))
		for key, value := range raw {
			var child JSONValue
			if err := json.Unmarshal(value, &child); err != nil {
				return err
			}
			v.Object[key] = child
		}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		v.Kind = JSONArray
		v.Array = make([]JSONValue, 0, len(raw))
		for _, value := range raw {
			var child JSONValue
			if err := json.Unmarshal(value, &child); err != nil {
				return err
			}
			v.Array = append(v.Array, child)
		}
	case '"':
		v.Kind = JSONString
		return json.Unmarshal(trimmed, &v.String)
	case 't', 'f':
		v.Kind = JSONBool
		return json.Unmarshal(trimmed, &v.Bool)
	case 'n':
		if string(trimmed) != "null" {
			return fmt.Errorf("invalid json literal")
		}
		v.Kind = JSONNull
	default:
		v.Kind = JSONNumber
		return json.Unmarshal(trimmed, &v.Number)
	}
	return nil
}

// Text flattens the value into a cell string. Null is empty, arrays are one
// item per line and objects are compact JSON.
func (v JSONValue) Text() string {
	switch v.Kind {
	case JSONString:
		return v.String
	case JSONNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case JSONBool:
		return strconv.FormatBool(v.Bool)
	case JSONArray:
		lines := make([]string, 0, len(v.Array))
		for _, item := range v.Array {
			lines = append(lines, item.Text())
		}
		return strings.Join(lines, "\n")
	case JSONObject:
		data, err := json.Marshal(v.ToInterface())
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// ToInterface converts the value into encoding/json's generic form.
func (v JSONValue) ToInterface() interface{} {
	switch v.Kind {
	case JSONObject:
		out := make(map[string]interface{}, len(v.Object))
		for key, value := range v.Object {
			out[key] = value.ToInterface()
		}
		return out
	case JSONArray:
		out := make([]interface{}, 0, len(v.Array))
		for _, value := range v.Array {
			out = append(out, value.ToInterface())
		}
		return out
	case JSONString:
		return v.String
	case JSONNumber:
		return v.Number
	case JSONBool:
		return v.Bool
	default:
		return nil
	}
}

// parseReply decodes the first JSON object in an oracle reply, tolerating
// code fences and surrounding prose.
func parseReply(reply string) (map[string]JSONValue, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("reply contains no json object")
	}
	var value JSONValue
	if err := json.Unmarshal([]byte(reply[start:end+1]), &value); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	if value.Kind != JSONObject {
		return nil, fmt.Errorf("reply is not a json object")
	}
	return value.Object, nil
}
