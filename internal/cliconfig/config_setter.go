// Author: momentics <momentics@gmail.com>

package cliconfig

import (
	"fmt"
	"time"
)

// setter applies config values only when the matching flag was not
// explicitly set on the command line.
type setter struct {
	changed map[string]bool
}

func newSetter(changed map[string]bool) *setter {
	if changed == nil {
		changed = map[string]bool{}
	}
	return &setter{changed: changed}
}

func (s *setter) setString(flag, val string, dst *string) {
	if val != "" && !s.changed[flag] {
		*dst = val
	}
}

func (s *setter) setInt(flag string, val int, dst *int) {
	if val != 0 && !s.changed[flag] {
		*dst = val
	}
}

func (s *setter) setBool(flag string, val *bool, dst *bool) {
	if val != nil && !s.changed[flag] {
		*dst = *val
	}
}

func (s *setter) setDuration(flag, val string, dst *time.Duration) error {
	if val == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("%s: %w", flag, err)
	}
	*dst = d
	return nil
}
