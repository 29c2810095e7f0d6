// Package flagutil provides StringValue, a flag.Value for options which may be repeated or which
// take a comma separated list, or both:
//
//	$ cymru-lookup -s 9.9.9.9 -s 1.1.1.1,8.8.8.8 ...
//
// Usage is as documented in the flags package:
//
//	var ms flagutil.StringValue
//	flagSet.Var(&ms, "someopt", "Short description of opt")
//	args := ms.Args() // Return an array of strings
package flagutil

import (
	"strings"
)

// StringValue is the type provided to flag.Var()
type StringValue struct {
	strings []string
}

// Set splits s on commas and appends each non-empty, trimmed value to the internal array. It is
// called by the flag package for each occurrence of the corresponding option on the command
// line. Part of the flag.Value interface.
func (t *StringValue) Set(s string) error {
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if len(v) > 0 {
			t.strings = append(t.strings, v)
		}
	}

	return nil
}

// String returns a comma separated string of all the values provided by Set. Part of the
// flag.Value interface.
func (t *StringValue) String() string {
	return strings.Join(t.strings, ",")
}

// Args returns a copy of the array of strings returned by Set. You can safely modify this
// array without fear of changing the internal data.
func (t *StringValue) Args() []string {
	return append([]string{}, t.strings...)
}

// NArg returns the number of strings created by Set
func (t *StringValue) NArg() int {
	return len(t.strings)
}
