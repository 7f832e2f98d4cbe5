package httpapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rscheck/rscheck/internal/model"
)

// parseQueryString parses raw (an http.Request's URL.RawQuery) into an
// ordered QueryArgs, preserving first-seen occurrence per arg-name and
// rejecting anything that is not a sequence of "k=v" pairs joined by "&".
func parseQueryString(raw string) (model.QueryArgs, error) {
	if raw == "" {
		return nil, nil
	}

	var args model.QueryArgs
	seen := make(map[string]struct{})
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			return nil, fmt.Errorf("malformed query string")
		}
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, fmt.Errorf("malformed query pair %q", segment)
		}
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("malformed query key %q: %w", key, err)
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("malformed query value %q: %w", value, err)
		}
		if _, dup := seen[decodedKey]; dup {
			continue
		}
		seen[decodedKey] = struct{}{}
		args = append(args, model.QueryArg{Name: decodedKey, Value: decodedValue})
	}
	return args, nil
}

// excludeSet builds the exclusion set from every occurrence of the
// "exclude" arg-name, each a comma-separated list of check names.
func excludeSet(args model.QueryArgs) map[string]struct{} {
	exclude := make(map[string]struct{})
	for _, arg := range args {
		if arg.Name != model.ArgExclude {
			continue
		}
		for _, name := range strings.Split(arg.Value, ",") {
			if name != "" {
				exclude[name] = struct{}{}
			}
		}
	}
	return exclude
}
