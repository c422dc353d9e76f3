package util

import (
	"fmt"
	"strconv"
)

func ParseSnowflake(s string) (uint64, error) {
	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse Snowflake ID string %q: %w", s, err)
	}
	return val, nil
}

func MustParseSnowflake(s string) uint64 {
	val, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return val
}

func FormatSnowflake(s uint64) string {
	return strconv.FormatUint(s, 10)
}

// ParseMention extracts the snowflake from a user, role or channel mention such as <@123>, <@!123>, <@&123>
// or <#123>. Bare IDs are accepted too.
func ParseMention(s string) (uint64, bool) {
	if len(s) > 3 && s[0] == '<' && s[len(s)-1] == '>' {
		s = s[1 : len(s)-1]
		for len(s) > 0 && (s[0] == '@' || s[0] == '!' || s[0] == '&' || s[0] == '#') {
			s = s[1:]
		}
	}
	val, err := ParseSnowflake(s)
	if err != nil || val == 0 {
		return 0, false
	}
	return val, true
}
