package challenges

import (
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Discovered holds values produced by earlier scenarios in the same run, keyed by name.
type Discovered map[string]string

// LookupPath finds a dot-separated path such as "todos.0.id" in a JSON body. Numeric segments
// index arrays. It fails closed: any parse error or missing step returns false.
func LookupPath(body []byte, path string) (ldvalue.Value, bool) {
	value, ok := parseJSON(body)
	if !ok {
		return ldvalue.Null(), false
	}
	if path == "" {
		return value, true
	}
	for _, segment := range strings.Split(path, ".") {
		switch value.Type() {
		case ldvalue.ObjectType:
			next, found := objectKey(value, segment)
			if !found {
				return ldvalue.Null(), false
			}
			value = next
		case ldvalue.ArrayType:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= value.Count() {
				return ldvalue.Null(), false
			}
			value = value.GetByIndex(index)
		default:
			return ldvalue.Null(), false
		}
	}
	return value, true
}

func parseJSON(body []byte) (value ldvalue.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	value = ldvalue.Parse(body)
	if value.IsNull() && strings.TrimSpace(string(body)) != "null" {
		return ldvalue.Null(), false
	}
	return value, true
}

func objectKey(value ldvalue.Value, key string) (ldvalue.Value, bool) {
	for _, k := range value.Keys() {
		if k == key {
			return value.GetByKey(key), true
		}
	}
	return ldvalue.Null(), false
}

// scalarString renders a string, number or bool for use in a path or header. Null, arrays
// and objects are not usable as discovered values.
func scalarString(value ldvalue.Value) (string, bool) {
	switch value.Type() {
	case ldvalue.StringType:
		return value.StringValue(), value.StringValue() != ""
	case ldvalue.NumberType:
		if value.IsInt() {
			return strconv.Itoa(value.IntValue()), true
		}
		return strconv.FormatFloat(value.Float64Value(), 'f', -1, 64), true
	case ldvalue.BoolType:
		return strconv.FormatBool(value.BoolValue()), true
	}
	return "", false
}
