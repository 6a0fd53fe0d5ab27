// Package assert holds constructor preconditions. A failed assertion is a
// programming error, so these panic instead of returning errors.
package assert

import (
	"fmt"
	"reflect"
)

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			panic(fmt.Sprintf("expected %T to be not nil", value))
		}
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

func Positive(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("expected a positive integer, got %d", n))
	}
}
