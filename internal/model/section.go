package model

import (
	"errors"
	"fmt"
)

var ErrInvalidSection = errors.New("model: invalid section")

// Section partitions tasks and categories into the four fixed areas of the
// tracker.
type Section string

const (
	SectionHousehold Section = "household"
	SectionPersonal  Section = "personal"
	SectionWork      Section = "work"
	SectionBlog      Section = "blog"
)

func (s Section) IsValid() bool {
	switch s {
	case SectionHousehold, SectionPersonal, SectionWork, SectionBlog:
		return true
	default:
		return false
	}
}

// Sections returns all sections in display order.
func Sections() []Section {
	return []Section{SectionHousehold, SectionPersonal, SectionWork, SectionBlog}
}

// ParseSection validates a raw section identifier.
func ParseSection(raw string) (Section, error) {
	s := Section(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSection, raw)
	}
	return s, nil
}
