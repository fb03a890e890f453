package host

import "fmt"

// Value is any host value: nil (undefined), bool, float64, string, []Value
// or *Object.
type Value = any

// TypeName returns a short name of the host type of v, for diagnostics.
func TypeName(v Value) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []Value:
		return "array"
	case *Object:
		if x.IsFunction() {
			return "function"
		}
		return "object"
	default:
		return fmt.Sprintf("foreign(%T)", v)
	}
}

// IsObject reports whether v is a live host object.
func IsObject(v Value) bool {
	o, ok := v.(*Object)
	return ok && o != nil && !o.dead
}
