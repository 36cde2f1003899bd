package debugui

import (
	"fmt"
	"reflect"
	"sync"
)

type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	IsStruct  bool
}

// ReflectionCache memoizes the exported fields of component types. Panels run on the render
// path every frame, so the lookups are shared.
type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Pointer
			if isPointer {
				fieldType = fieldType.Elem()
			}

			fields = append(fields, FieldInfo{
				Name:      field.Name,
				Type:      fieldType,
				Index:     i,
				IsPointer: isPointer,
				IsStruct:  fieldType.Kind() == reflect.Struct,
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

// FieldRow is one leaf field of a component, flattened with a dotted path.
type FieldRow struct {
	Path  string
	Kind  reflect.Kind
	Value string
}

// fieldRows flattens the exported fields of a component value. Nested structs are expanded in
// place; nil pointers show as "nil".
func (rc *ReflectionCache) fieldRows(prefix string, val reflect.Value) []FieldRow {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return []FieldRow{{Path: prefix, Kind: reflect.Pointer, Value: "nil"}}
		}
		val = val.Elem()
	}

	var rows []FieldRow
	for _, field := range rc.GetFields(val.Type()) {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}

		fieldVal := val.Field(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				rows = append(rows, FieldRow{Path: path, Kind: reflect.Pointer, Value: "nil"})
				continue
			}
			fieldVal = fieldVal.Elem()
		}

		if field.IsStruct {
			rows = append(rows, rc.fieldRows(path, fieldVal)...)
			continue
		}

		rows = append(rows, FieldRow{
			Path:  path,
			Kind:  fieldVal.Kind(),
			Value: formatField(fieldVal),
		})
	}
	return rows
}

func formatField(val reflect.Value) string {
	switch val.Kind() {
	case reflect.Slice:
		return fmt.Sprintf("[%d items]", val.Len())
	case reflect.Map:
		return fmt.Sprintf("map[%d items]", val.Len())
	case reflect.Func, reflect.Chan:
		return val.Type().String()
	default:
		return fmt.Sprintf("%v", val.Interface())
	}
}

var globalReflectionCache = NewReflectionCache()
