// Package nilcheck detects nil collaborators, including typed nils hidden
// behind an interface value.
package nilcheck

import "reflect"

// IsNil reports whether value is nil or an interface wrapping a nil pointer,
// func, map, slice, channel or interface.
func IsNil(value any) bool {
	if value == nil {
		return true
	}

	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
