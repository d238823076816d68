package model

import (
	"fmt"
	"time"
)

// IntervalSetting is one notification interval: how often a due check runs
// and whether it is enabled at all.
type IntervalSetting struct {
	Enabled bool           `json:"enabled"`
	Value   int            `json:"value"`
	Unit    RecurrenceUnit `json:"unit"`
}

func (s IntervalSetting) Validate() error {
	if !s.Unit.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidUnit, s.Unit)
	}
	return nil
}

// Interval converts the setting to a wall-clock duration. A repeating timer
// has no calendar semantics, so months are fixed at 30 days. Non-positive
// values are coerced to 1.
func (s IntervalSetting) Interval() time.Duration {
	value := s.Value
	if value < 1 {
		value = 1
	}
	switch s.Unit {
	case UnitMinutes:
		return time.Duration(value) * time.Minute
	case UnitHours:
		return time.Duration(value) * time.Hour
	case UnitDays:
		return time.Duration(value) * 24 * time.Hour
	case UnitWeeks:
		return time.Duration(value) * 7 * 24 * time.Hour
	case UnitMonths:
		return time.Duration(value) * 30 * 24 * time.Hour
	default:
		// Unknown units are rejected when settings are saved; legacy data
		// that slips past the boundary keeps a daily timer.
		return time.Duration(value) * 24 * time.Hour
	}
}

// SectionNotificationConfig is a section's notification setting plus optional
// per-category overrides. An enabled override supersedes the section setting
// for items of that category.
type SectionNotificationConfig struct {
	IntervalSetting
	Categories map[string]IntervalSetting `json:"categories,omitempty"`
}

func (c SectionNotificationConfig) Validate() error {
	if err := c.IntervalSetting.Validate(); err != nil {
		return err
	}
	for name, override := range c.Categories {
		if err := override.Validate(); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
	}
	return nil
}

// NotificationSettings holds the full notification configuration, keyed by
// section.
type NotificationSettings map[Section]SectionNotificationConfig

func (s NotificationSettings) Validate() error {
	for section, cfg := range s {
		if !section.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidSection, section)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("section %q: %w", section, err)
		}
	}
	return nil
}

// DefaultNotificationSettings enables a daily check for every section.
func DefaultNotificationSettings() NotificationSettings {
	out := make(NotificationSettings, len(Sections()))
	for _, s := range Sections() {
		out[s] = SectionNotificationConfig{
			IntervalSetting: IntervalSetting{Enabled: true, Value: 1, Unit: UnitDays},
		}
	}
	return out
}
