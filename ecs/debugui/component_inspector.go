package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/fixedgate/ecs"
)

// NewComponentInspector creates an inspector. Components of the readOnly
// types are shown without input widgets.
func NewComponentInspector(readOnly ...reflect.Type) *ComponentInspector {
	return &ComponentInspector{layouts: NewReflectionCache(readOnly...)}
}

func (ci *ComponentInspector) Render(storage *ecs.Storage, selectedEntityId ecs.EntityId) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selectedEntityId = selectedEntityId

	if ci.selectedEntityId == 0 {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	if !storage.Alive(ci.selectedEntityId) {
		imgui.Text(fmt.Sprintf("Entity %d is no longer alive", ci.selectedEntityId.Index()))
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %d (generation %d)", ci.selectedEntityId.Index(), ci.selectedEntityId.Generation()))
	imgui.Separator()

	for _, compType := range storage.ComponentTypes(ci.selectedEntityId) {
		component := storage.GetComponent(ci.selectedEntityId, compType)
		if component == nil {
			continue
		}

		layout := ci.layouts.Layout(compType)
		label := compType.String()
		if layout.ReadOnly {
			label += " (read-only)"
		}
		if imgui.TreeNodeStr(label) {
			ci.renderComponent(reflect.ValueOf(component).Elem(), layout)
			imgui.TreePop()
		}
	}

	imgui.End()
}

// renderComponent draws val, which is addressable because storage hands out
// pointers, so edits land directly in the component.
func (ci *ComponentInspector) renderComponent(val reflect.Value, layout *ComponentLayout) {
	if layout.Fields == nil {
		ci.renderField(val, layout.Self, layout.ReadOnly)
		return
	}
	ci.renderFields(val, layout.Fields, layout.ReadOnly)
}

func (ci *ComponentInspector) renderFields(val reflect.Value, fields []FieldInfo, readOnly bool) {
	for _, field := range fields {
		fieldVal := val.Field(field.Index)
		if field.IsPointer {
			if fieldVal.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(fieldVal, field, readOnly)
	}
}

func (ci *ComponentInspector) renderField(val reflect.Value, field FieldInfo, readOnly bool) {
	name := field.Name
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if readOnly || !field.Editable() {
		ci.renderValue(val, field, readOnly)
		return
	}

	switch field.Kind {
	case kindInt:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) {
			setField(val, reflect.ValueOf(int64(v)))
		}

	case kindUint:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 {
			setField(val, reflect.ValueOf(uint64(v)))
		}

	case kindFloat:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) {
			setField(val, reflect.ValueOf(float64(v)))
		}

	case kindBool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) {
			setField(val, reflect.ValueOf(v))
		}

	case kindString:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) {
			setField(val, reflect.ValueOf(v))
		}
	}
}

// renderValue draws a value as text, descending into structs.
func (ci *ComponentInspector) renderValue(val reflect.Value, field FieldInfo, readOnly bool) {
	name := field.Name
	switch field.Kind {
	case kindStruct:
		if imgui.TreeNodeStr(name) {
			ci.renderFields(val, ci.layouts.GetFields(val.Type()), readOnly)
			imgui.TreePop()
		}
	case kindSlice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))
	case kindMap:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))
	case kindFunc:
		imgui.Text(fmt.Sprintf("%s: func", name))
	default:
		imgui.Text(fmt.Sprintf("%s: %s", name, formatValue(val)))
	}
}

// formatValue renders scalars in full precision, including unsigned values
// above the int32 range.
func formatValue(val reflect.Value) string {
	if !val.CanInterface() {
		return "<unexported>"
	}
	return fmt.Sprintf("%v", val.Interface())
}

// setField writes value into dst, converting between numeric kinds.
// Unsettable destinations and values that do not fit are refused.
func setField(dst, value reflect.Value) bool {
	if !dst.CanSet() {
		return false
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if !value.CanInt() || dst.OverflowInt(value.Int()) {
			return false
		}
		dst.SetInt(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if !value.CanUint() || dst.OverflowUint(value.Uint()) {
			return false
		}
		dst.SetUint(value.Uint())
	case reflect.Float32, reflect.Float64:
		if !value.CanFloat() || dst.OverflowFloat(value.Float()) {
			return false
		}
		dst.SetFloat(value.Float())
	case reflect.Bool:
		if value.Kind() != reflect.Bool {
			return false
		}
		dst.SetBool(value.Bool())
	case reflect.String:
		if value.Kind() != reflect.String {
			return false
		}
		dst.SetString(value.String())
	default:
		return false
	}
	return true
}
