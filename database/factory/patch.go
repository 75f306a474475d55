package factory

import (
	"maps"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm/schema"
)

// Patch is a partial record. Keys name struct fields by Go name, json tag,
// gorm column or snake_case column; for map records they are map keys.
type Patch map[string]any

var (
	fieldCache sync.Map // reflect.Type -> *fieldIndex
	naming     = schema.NamingStrategy{}
)

type fieldIndex struct {
	exact  map[string][]int
	folded map[string][]int
	bsonID []int
}

// Apply shallow-merges p onto record. Struct records are copied, pointer
// records are patched in place and map records are cloned first.
func Apply[T any](record T, p Patch) (T, error) {
	if len(p) == 0 {
		return record, nil
	}

	target := reflect.ValueOf(&record).Elem()
	if target.Kind() == reflect.Interface {
		return record, patchError("", "records of interface type %s cannot be patched", target.Type())
	}

	switch target.Kind() {
	case reflect.Struct:
		return record, applyStruct(target, p)
	case reflect.Pointer:
		if target.IsNil() {
			return record, patchError("", "record is a nil %s", target.Type())
		}
		if target.Elem().Kind() != reflect.Struct {
			return record, patchError("", "records of type %s cannot be patched", target.Type())
		}
		return record, applyStruct(target.Elem(), p)
	case reflect.Map:
		return record, applyMap(target, p)
	default:
		return record, patchError("", "records of type %s cannot be patched", target.Type())
	}
}

func applyStruct(target reflect.Value, p Patch) error {
	idx := indexFor(target.Type())
	for key, value := range p {
		path, ok := idx.lookup(key)
		if !ok {
			return patchError(key, "no such field on %s", target.Type())
		}
		field := fieldByIndex(target, path)
		v, err := coerce(key, value, field.Type())
		if err != nil {
			return err
		}
		field.Set(v)
	}
	return nil
}

func applyMap(target reflect.Value, p Patch) error {
	mt := target.Type()
	if mt.Key().Kind() != reflect.String {
		return patchError("", "map records need string keys, got %s", mt)
	}

	out := reflect.MakeMapWithSize(mt, target.Len()+len(p))
	iter := target.MapRange()
	for iter.Next() {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	for key, value := range p {
		v, err := coerce(key, value, mt.Elem())
		if err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(mt.Key()), v)
	}

	target.Set(out)
	return nil
}

// fieldByIndex walks path like reflect.Value.FieldByIndex, allocating nil
// embedded struct pointers along the way. v must be addressable.
func fieldByIndex(v reflect.Value, path []int) reflect.Value {
	for i, x := range path {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				ptr := v
				if !ptr.CanSet() {
					// unexported embedded types are read-only through reflect
					ptr = reflect.NewAt(v.Type(), v.Addr().UnsafePointer()).Elem()
				}
				ptr.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func (fi *fieldIndex) lookup(key string) ([]int, bool) {
	if path, ok := fi.exact[key]; ok {
		return path, true
	}
	path, ok := fi.folded[strings.ToLower(key)]
	return path, ok
}

func indexFor(t reflect.Type) *fieldIndex {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(*fieldIndex)
	}

	fi := &fieldIndex{
		exact:  make(map[string][]int),
		folded: make(map[string][]int),
	}

	fields := reflect.VisibleFields(t)
	add := func(name string, path []int) {
		if name == "" || name == "-" {
			return
		}
		if _, taken := fi.exact[name]; !taken {
			fi.exact[name] = path
		}
	}

	// Go names win over tags, tags win over derived column names.
	for _, f := range fields {
		if f.IsExported() {
			add(f.Name, f.Index)
		}
	}
	for _, f := range fields {
		if f.IsExported() {
			add(jsonName(f), f.Index)
		}
	}
	for _, f := range fields {
		if f.IsExported() {
			add(gormColumn(f), f.Index)
		}
	}
	for _, f := range fields {
		if f.IsExported() && !f.Anonymous {
			add(naming.ColumnName("", f.Name), f.Index)
		}
	}
	for _, f := range fields {
		if f.IsExported() {
			folded := strings.ToLower(f.Name)
			if _, taken := fi.folded[folded]; !taken {
				fi.folded[folded] = f.Index
			}
		}
	}

	for _, f := range fields {
		if f.IsExported() && fi.bsonID == nil && bsonName(f) == "_id" {
			fi.bsonID = f.Index
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fi)
	return actual.(*fieldIndex)
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func bsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("bson"), ",")
	return name
}

func gormColumn(f reflect.StructField) string {
	for _, part := range strings.Split(f.Tag.Get("gorm"), ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), ":")
		if ok && strings.EqualFold(k, "column") {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func coerce(field string, value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if out, ok := convert(v, t); ok {
		return out, nil
	}

	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		if v.Type().AssignableTo(elem) {
			ptr := reflect.New(elem)
			ptr.Elem().Set(v)
			return ptr, nil
		}
		if out, ok := convert(v, elem); ok {
			ptr := reflect.New(elem)
			ptr.Elem().Set(out)
			return ptr, nil
		}
	}

	return reflect.Value{}, patchError(field, "cannot use %T as %s", value, t)
}

// convert allows numeric conversions that keep the value and conversions
// between types sharing a kind (named strings, byte slices).
func convert(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	if !v.Type().ConvertibleTo(t) {
		return reflect.Value{}, false
	}

	src, dst := v.Kind(), t.Kind()
	switch {
	case isFloat(src) && isFloat(dst):
		return v.Convert(t), true
	case isNumeric(src) && isNumeric(dst):
		if isInt(src) && isUint(dst) && v.Int() < 0 {
			return reflect.Value{}, false
		}
		out := v.Convert(t)
		if isUint(src) && isInt(dst) && out.Int() < 0 {
			return reflect.Value{}, false
		}
		if !out.Convert(v.Type()).Equal(v) {
			return reflect.Value{}, false
		}
		return out, true
	case src == dst && src != reflect.Interface:
		return v.Convert(t), true
	default:
		return reflect.Value{}, false
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}

func (p Patch) clone() Patch {
	return maps.Clone(p)
}
