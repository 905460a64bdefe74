package helper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/sqlsteps/constants"
)

// StringSliceToOrderedMap adds each value in s to an ordered map with key and value set to the value in s.
func StringSliceToOrderedMap(s []string) *om.OrderedMap {
	retval := om.NewOrderedMap()
	for _, v := range s {
		retval.Set(v, v)
	}
	return retval
}

// OrderedMapKeysToStringSlice returns the string keys of om in insertion order.
func OrderedMapKeysToStringSlice(o *om.OrderedMap) []string {
	retval := make([]string, 0, o.Len())
	iter := o.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, fmt.Sprint(kv.Key))
	}
	return retval
}

// Convert a string of the form, 'f1,f2,f3...' into a slice of string values.
// 1) Split on comma.
// 2) Remove leading and trailing spaces.
// An empty string produces an empty slice.
func CsvToStringSliceTrimSpaces(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	tokens := strings.Split(s, ",")
	for x := range tokens {
		tokens[x] = strings.TrimSpace(tokens[x])
	}
	return tokens
}

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match "true" or "1".
// It returns true if there's a match else false.
func GetTrueFalseStringAsBool(s string) bool {
	re := regexp.MustCompile("(?i)^(true|1|yes)$")
	return re.MatchString(strings.TrimSpace(s))
}

// GetStringFromInterface will convert interface{} value to a string.
// Times are formatted using constants.TimeFormatYearSecondsTZ.
func GetStringFromInterface(input interface{}) (retval string) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint8, uint16, uint32, uint64:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		retval = v.Format(constants.TimeFormatYearSecondsTZ)
	case []uint8:
		retval = string(v)
	case nil:
		retval = ""
	default:
		retval = fmt.Sprintf("%v", v)
	}
	return
}

// InterfaceToString converts each value in src to its string form.
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src), len(src))
	for i, v := range src {
		retval[i] = GetStringFromInterface(v)
	}
	return retval
}

// Truncate returns s cut to at most n runes, with "..." appended when it was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// SplitRight splits s at the last occurrence of c.
// If c is not found it returns s, "".
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}
