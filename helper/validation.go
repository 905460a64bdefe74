package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	missing := MissingMandatoryFields(cfg)
	if len(missing) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(missing, ", "))
	}
	return
}

// MissingMandatoryFields reflects over struct i (or a pointer to one) and returns the errorTxt tag of every
// exported field tagged mandatory:"yes" that holds its zero value.
// Nested structs are descended into; slices and maps are ignored.
func MissingMandatoryFields(i interface{}) []string {
	errTags := make([]string, 0)
	collectMissingFields(reflect.ValueOf(i), &errTags)
	return errTags
}

func collectMissingFields(val reflect.Value, errTags *[]string) {
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ { // for each field in the struct...
		field := typ.Field(idx)
		if field.PkgPath != "" { // if the field is unexported...
			continue
		}
		f := val.Field(idx)
		switch f.Kind() {
		case reflect.Struct, reflect.Ptr:
			collectMissingFields(f, errTags) // descend another level.
		case reflect.Slice, reflect.Map:
		default:
			if f.IsZero() && field.Tag.Get("mandatory") == "yes" { // if the field is its zero value and it is mandatory...
				*errTags = append(*errTags, field.Tag.Get("errorTxt"))
			}
		}
	}
}
