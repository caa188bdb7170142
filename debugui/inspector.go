package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/earthshot/entity"
)

// Inspector shows the exported fields of one entity and lets numbers,
// flags and strings be edited in place.
type Inspector struct{}

func NewInspector() *Inspector { return &Inspector{} }

func (ci *Inspector) Render(e entity.Entity, found bool) {
	if !imgui.BeginV("Entity Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if !found {
		imgui.Text("No entity selected")
		return
	}

	imgui.Text(fmt.Sprintf("Entity ID: %d", e.ID()))
	imgui.Text(fmt.Sprintf("Kind: %s", e.Kind()))
	imgui.Text(fmt.Sprintf("Phase: %s", e.Phase()))
	if box, ok := e.Bounds(); ok {
		imgui.Text(fmt.Sprintf("Bounds: %v .. %v", box.Min, box.Max))
	}
	if imgui.Button("Despawn") {
		e.MarkForDeletion()
	}
	imgui.Separator()

	val := reflect.ValueOf(e)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	ci.renderStruct(val)
}

func (ci *Inspector) renderStruct(val reflect.Value) {
	for _, field := range fieldCache.Fields(val.Type()) {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}
		ci.renderField(field.Name, fieldVal, field)
	}
}

func (ci *Inspector) renderField(name string, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.Kind() == reflect.Ptr && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		// an embedded Body only exposes its Handle
		if field.Embedded && len(fieldCache.Fields(val.Type())) <= 1 {
			return
		}
		if imgui.TreeNodeStr(name) {
			ci.renderStruct(val)
			imgui.TreePop()
		}

	case reflect.Interface:
		if val.IsNil() {
			imgui.Text(fmt.Sprintf("%s: nil", name))
		} else {
			imgui.Text(fmt.Sprintf("%s: %T", name, val.Interface()))
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}
