package hook

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap/zapcore"
)

var (
	levelType = reflect.TypeOf(zapcore.InfoLevel)
)

// Level decodes level names such as "info" or "WARNING" into zapcore.Level. "warning" and "critical" are
// accepted as aliases of warn and fatal.
func Level() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() != reflect.String || out != levelType {
			return val, nil
		}
		name := strings.ToLower(strings.TrimSpace(val.(string)))
		switch name {
		case "warning":
			name = "warn"
		case "critical":
			name = "fatal"
		}
		l := zapcore.InfoLevel
		if err := l.UnmarshalText([]byte(name)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", val)
		}
		return l, nil
	}
}
