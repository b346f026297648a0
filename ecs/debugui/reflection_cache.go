package debugui

import (
	"reflect"
	"sync"
	"time"
)

// fieldKind says how the inspector draws and edits a value.
type fieldKind uint8

const (
	kindOther fieldKind = iota
	kindInt
	kindUint
	kindWideUint
	kindFloat
	kindBool
	kindString
	kindDuration
	kindStruct
	kindSlice
	kindMap
	kindFunc
)

var durationType = reflect.TypeFor[time.Duration]()

// classify maps a type to its fieldKind. Unsigned types wider than 16 bits
// cannot round-trip through ImGui's int32 input and are shown read-only.
func classify(t reflect.Type) fieldKind {
	if t == durationType {
		return kindDuration
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint8, reflect.Uint16:
		return kindUint
	case reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindWideUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.Bool:
		return kindBool
	case reflect.String:
		return kindString
	case reflect.Struct:
		return kindStruct
	case reflect.Slice, reflect.Array:
		return kindSlice
	case reflect.Map:
		return kindMap
	case reflect.Func:
		return kindFunc
	}
	return kindOther
}

// FieldInfo describes one exported field, or a whole non-struct component.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	Kind      fieldKind
}

// Editable reports whether the inspector offers an input widget for the field.
func (f FieldInfo) Editable() bool {
	switch f.Kind {
	case kindInt, kindUint, kindFloat, kindBool, kindString:
		return true
	}
	return false
}

// ComponentLayout is the cached shape of a component type. Fields is nil for
// non-struct components, which are described by Self alone.
type ComponentLayout struct {
	Self     FieldInfo
	Fields   []FieldInfo
	ReadOnly bool
}

// ReflectionCache memoises component layouts and the set of component types
// the inspector must not write to.
type ReflectionCache struct {
	mu       sync.RWMutex
	layouts  map[reflect.Type]*ComponentLayout
	readOnly map[reflect.Type]bool
}

func NewReflectionCache(readOnly ...reflect.Type) *ReflectionCache {
	rc := &ReflectionCache{
		layouts:  make(map[reflect.Type]*ComponentLayout),
		readOnly: make(map[reflect.Type]bool, len(readOnly)),
	}
	for _, t := range readOnly {
		rc.readOnly[t] = true
	}
	return rc
}

func (rc *ReflectionCache) Layout(t reflect.Type) *ComponentLayout {
	rc.mu.RLock()
	cached, ok := rc.layouts[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.layouts[t]; ok {
		return cached
	}

	layout := &ComponentLayout{
		Self:     FieldInfo{Name: t.Name(), Type: t, Kind: classify(t)},
		ReadOnly: rc.readOnly[t],
	}
	if layout.Self.Kind == kindStruct {
		layout.Fields = structFields(t)
	}

	rc.layouts[t] = layout
	return layout
}

// GetFields returns the exported fields of a struct type, or nil.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	return rc.Layout(t).Fields
}

func structFields(t reflect.Type) []FieldInfo {
	var fields []FieldInfo
	for i := range t.NumField() {
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
			Kind:      classify(fieldType),
		})
	}
	return fields
}
