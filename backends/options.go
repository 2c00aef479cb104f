package backends

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Options are the parsed "key=value" and "flag" entries of a backend configuration string.
type Options struct {
	backend string
	values  map[string]string
	used    map[string]bool
}

// ParseOptions parses a comma-separated backend configuration string, e.g. "group=128,async,memory=1GiB".
// Entries without "=" are boolean flags set to true.
func ParseOptions(backend, config string) (*Options, error) {
	opts := &Options{backend: backend, values: make(map[string]string), used: make(map[string]bool)}
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !found {
			value = "true"
		}
		if key == "" {
			return nil, errors.Errorf("backend %q: invalid configuration option %q", backend, part)
		}
		if _, dup := opts.values[key]; dup {
			return nil, errors.Errorf("backend %q: configuration option %q given more than once", backend, key)
		}
		opts.values[key] = strings.TrimSpace(value)
	}
	return opts, nil
}

// Int returns the integer value of key, or defaultValue if not set.
func (o *Options) Int(key string, defaultValue int) (int, error) {
	s, found := o.lookup(key)
	if !found {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "backend %q: invalid value for option %q", o.backend, key)
	}
	return v, nil
}

// Bool returns the boolean value of key, or false if not set.
func (o *Options) Bool(key string) (bool, error) {
	s, found := o.lookup(key)
	if !found {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(err, "backend %q: invalid value for option %q", o.backend, key)
	}
	return v, nil
}

// Bytes returns the size in bytes of key (e.g.: "512MiB", "2GB"), or defaultValue if not set.
func (o *Options) Bytes(key string, defaultValue int64) (int64, error) {
	s, found := o.lookup(key)
	if !found {
		return defaultValue, nil
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "backend %q: invalid size for option %q", o.backend, key)
	}
	return int64(v), nil
}

// CheckAllUsed returns an error listing options that were given but never read.
func (o *Options) CheckAllUsed() error {
	var unknown []string
	for key := range o.values {
		if !o.used[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return errors.Errorf("unknown configuration option(s) %q for backend %q", unknown, o.backend)
	}
	return nil
}

func (o *Options) lookup(key string) (string, bool) {
	o.used[key] = true
	s, found := o.values[key]
	return s, found
}
