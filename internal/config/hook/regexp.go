package hook

import (
	"reflect"
	"regexp"

	"github.com/mitchellh/mapstructure"
)

var (
	regexpType = reflect.TypeOf(&regexp.Regexp{})
)

// Regexp compiles string values into *regexp.Regexp. An empty pattern leaves the field nil.
func Regexp() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == regexpType {
			if val.(string) == "" {
				return nil, nil
			}
			return regexp.Compile(val.(string))
		}
		return val, nil
	}
}
