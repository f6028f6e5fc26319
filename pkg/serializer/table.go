package serializer

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"text/tabwriter"
)

type row struct {
	field string
	value string
}

// writeTable flattens data into FIELD/VALUE rows. Nested fields are
// joined with dots and slice elements are indexed ("[0].Name").
func writeTable(w io.Writer, data any) error {
	var rows []row
	flatten("", reflect.ValueOf(data), &rows)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>\t")
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.field, r.value)
	}
	return tw.Flush()
}

func flatten(prefix string, v reflect.Value, rows *[]row) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			*rows = append(*rows, row{field: prefix, value: "<nil>"})
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		*rows = append(*rows, row{field: prefix, value: "<nil>"})
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			flatten(join(prefix, f.Name), v.Field(i), rows)
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			flatten(join(prefix, fmt.Sprint(k.Interface())), v.MapIndex(k), rows)
		}
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			*rows = append(*rows, row{field: prefix, value: string(v.Bytes())})
			return
		}
		for i := range v.Len() {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i), rows)
		}
	default:
		*rows = append(*rows, row{field: prefix, value: fmt.Sprint(v.Interface())})
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
