package builder

import (
	"errors"
	"fmt"
	"strings"
)

const maxTitleLen = 300

var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Validate checks the structural rules a snapshot must satisfy before it enters history.
// Positions are not checked; callers renumber.
func (s Snapshot) Validate() error {
	seen := make(map[string]struct{})
	claim := func(kind, id string) error {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %s id is empty", ErrInvalidSnapshot, kind)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidSnapshot, id)
		}
		seen[id] = struct{}{}
		return nil
	}
	checkTitle := func(kind, id, title string) error {
		t := strings.TrimSpace(title)
		if t == "" || len(t) > maxTitleLen {
			return fmt.Errorf("%w: %s %q title must be between 1 and %d characters", ErrInvalidSnapshot, kind, id, maxTitleLen)
		}
		return nil
	}

	for _, m := range s.Modules {
		if err := claim("module", m.ID); err != nil {
			return err
		}
		if err := checkTitle("module", m.ID, m.Title); err != nil {
			return err
		}
		for _, l := range m.Lessons {
			if err := claim("lesson", l.ID); err != nil {
				return err
			}
			if err := checkTitle("lesson", l.ID, l.Title); err != nil {
				return err
			}
			if !l.ContentType.Known() {
				return fmt.Errorf("%w: lesson %q has unknown content type %q", ErrInvalidSnapshot, l.ID, l.ContentType)
			}
		}
	}
	if s.SelectedLessonID != nil {
		if mi, _ := s.FindLesson(*s.SelectedLessonID); mi < 0 {
			return fmt.Errorf("%w: selected lesson %q does not exist", ErrInvalidSnapshot, *s.SelectedLessonID)
		}
	}
	return nil
}
