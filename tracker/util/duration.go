package util

import (
	"fmt"
	"strings"
	"time"
)

// Duration is a time.Duration that reads and writes as a human readable string, such as "3s".
type Duration time.Duration

// D ...
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// UnmarshalText ...
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: cannot parse %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText ...
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
