package models

import (
	"reflect"
	"strings"
)

// changes lists the fields set on a patch struct keyed by their JSON name.
// Only non-nil pointer fields count as set; fields tagged `patch:"-"` are
// accepted on the wire but never applied.
func changes(patch interface{}) map[string]interface{} {
	v := reflect.Indirect(reflect.ValueOf(patch))
	t := v.Type()

	out := make(map[string]interface{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("patch") == "-" {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		out[jsonName(f)] = fv.Elem().Interface()
	}
	return out
}

// apply copies every set field of patch onto the struct dst points to,
// matching fields by JSON name.
func apply(dst interface{}, patch interface{}) {
	dv := reflect.ValueOf(dst).Elem()
	dt := dv.Type()

	index := make(map[string]int, dt.NumField())
	for i := 0; i < dt.NumField(); i++ {
		index[jsonName(dt.Field(i))] = i
	}

	for name, value := range changes(patch) {
		i, ok := index[name]
		if !ok {
			continue
		}
		dv.Field(i).Set(reflect.ValueOf(value))
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.Split(f.Tag.Get("json"), ",")[0]
	if name == "" {
		return f.Name
	}
	return name
}
