package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key builds the canonical cache key for an operation and its effective
// parameters. Parameter names and repeated values are sorted and empty values
// are dropped, so equivalent requests map to the same key.
func Key(op string, params url.Values) string {
	names := make([]string, 0, len(params))
	for name, values := range params {
		if hasValue(values) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return op
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	sep := byte('?')
	for _, name := range names {
		values := make([]string, 0, len(params[name]))
		for _, v := range params[name] {
			if v != "" {
				values = append(values, v)
			}
		}
		sort.Strings(values)
		for _, v := range values {
			b.WriteByte(sep)
			sep = '&'
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func hasValue(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}
