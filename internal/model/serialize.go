package model

// Хелперы для чтения map[string]any, пришедших из JSON, YAML или
// напрямую из Serialize. Числа принимаются любого встроенного типа:
// после encoding/json все они float64.

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	}
	if i, ok := toInt64(v); ok {
		return float32(i), true
	}
	return 0, false
}

func getInt64(data map[string]any, key string, def int64) int64 {
	if v, ok := data[key]; ok {
		if n, ok := toInt64(v); ok {
			return n
		}
	}
	return def
}

func getInt32(data map[string]any, key string, def int32) int32 {
	return int32(getInt64(data, key, int64(def)))
}

func getFloat32(data map[string]any, key string, def float32) float32 {
	if v, ok := data[key]; ok {
		if f, ok := toFloat32(v); ok {
			return f
		}
	}
	return def
}

func getString(data map[string]any, key string, def string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return def
}

func getBool(data map[string]any, key string, def bool) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return def
}

func getMap(data map[string]any, key string) map[string]any {
	if v, ok := data[key].(map[string]any); ok {
		return v
	}
	return nil
}

// getMapSlice принимает как []map[string]any (после Serialize),
// так и []any (после json.Unmarshal).
func getMapSlice(data map[string]any, key string) []map[string]any {
	switch v := data[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		switch t := v.(type) {
		case map[string]any:
			dst[k] = cloneMap(t)
		case []any:
			cp := make([]any, len(t))
			copy(cp, t)
			dst[k] = cp
		default:
			dst[k] = v
		}
	}
	return dst
}
