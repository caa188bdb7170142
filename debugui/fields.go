package debugui

import (
	"reflect"
	"sync"
)

// FieldInfo describes one exported struct field shown by the inspector.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	Embedded  bool
}

// FieldCache memoizes the exported fields of struct types.
type FieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]FieldInfo
}

func NewFieldCache() *FieldCache {
	return &FieldCache{fields: make(map[reflect.Type][]FieldInfo)}
}

// Fields lists t's exported fields in declaration order. Non-struct types
// have none.
func (fc *FieldCache) Fields(t reflect.Type) []FieldInfo {
	fc.mu.RLock()
	cached, ok := fc.fields[t]
	fc.mu.RUnlock()
	if ok {
		return cached
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if cached, ok := fc.fields[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
				Embedded:  field.Anonymous,
			})
		}
	}

	fc.fields[t] = fields
	return fields
}

var fieldCache = NewFieldCache()
