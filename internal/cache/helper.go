package cache

import "encoding/json"

// UnmarshalCacheValue приводит значение кэша к типу T.
// В памяти лежат сами объекты, в Redis - JSON-строки.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}

	if typed, ok := value.(*T); ok {
		return typed, true
	}

	if str, ok := value.(string); ok {
		var result T
		if err := json.Unmarshal([]byte(str), &result); err == nil {
			return &result, true
		}
	}

	return nil, false
}
