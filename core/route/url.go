package route

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidURL is returned for URLs that are not absolute paths.
var ErrInvalidURL = errors.New("route: url must start with /")

// Params are the matrix parameters of the last path segment, e.g.
// x, y and z in "/explore;x=10.5;y=20.25;z=14".
type Params map[string]string

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParseURL splits raw into its path and the matrix parameters of its last
// segment. Parameters without "=" are recorded with an empty value.
func ParseURL(raw string) (string, Params, error) {
	if !strings.HasPrefix(raw, "/") {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	path, matrix, _ := strings.Cut(raw, ";")
	params := Params{}
	if matrix == "" {
		return path, params, nil
	}
	for _, pair := range strings.Split(matrix, ";") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.PathUnescape(k)
		if err != nil {
			return "", nil, fmt.Errorf("route: parameter %q: %w", k, err)
		}
		val, err := url.PathUnescape(v)
		if err != nil {
			return "", nil, fmt.Errorf("route: parameter %q: %w", k, err)
		}
		params[key] = val
	}
	return path, params, nil
}

// FormatURL renders path with params as matrix parameters, keys sorted.
func FormatURL(path string, params Params) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(path)
	for _, k := range keys {
		b.WriteByte(';')
		b.WriteString(url.PathEscape(k))
		b.WriteByte('=')
		b.WriteString(url.PathEscape(params[k]))
	}
	return b.String()
}
