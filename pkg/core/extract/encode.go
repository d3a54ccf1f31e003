package extract

import "encoding/base64"

// EncodeBinary walks an arbitrarily nested result tree and converts every
// []byte leaf to a base64 string. Chart bytes can appear at any depth, so
// the conversion is recursive over maps and slices.
func EncodeBinary(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = EncodeBinary(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = EncodeBinary(item)
		}
		return out
	default:
		return v
	}
}
