package builder

// Lesson is one row of a module's lesson list inside the editor.
type Lesson struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Position    int         `json:"position"`
	ContentType ContentType `json:"contentType"`
	IsPreview   bool        `json:"isPreview"`
	ContentText *string     `json:"contentText,omitempty"`
}

// Module owns an ordered lesson list. Positions are dense and zero-based.
type Module struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	Position    int      `json:"position"`
	Lessons     []Lesson `json:"lessons"`
}

// Snapshot is the whole editable state of one builder session at one instant.
// Treat it as a value: every transition returns a new Snapshot.
type Snapshot struct {
	SelectedLessonID *string  `json:"selectedLessonId"`
	Modules          []Module `json:"modules"`
}

func (l Lesson) Clone() Lesson {
	if l.ContentText != nil {
		text := *l.ContentText
		l.ContentText = &text
	}
	return l
}

func (m Module) Clone() Module {
	if m.Description != nil {
		desc := *m.Description
		m.Description = &desc
	}
	if m.Lessons == nil {
		return m
	}
	lessons := make([]Lesson, len(m.Lessons))
	for i := range m.Lessons {
		lessons[i] = m.Lessons[i].Clone()
	}
	m.Lessons = lessons
	return m
}

func CloneModules(modules []Module) []Module {
	if modules == nil {
		return nil
	}
	out := make([]Module, len(modules))
	for i := range modules {
		out[i] = modules[i].Clone()
	}
	return out
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Modules: CloneModules(s.Modules)}
	if s.SelectedLessonID != nil {
		id := *s.SelectedLessonID
		out.SelectedLessonID = &id
	}
	return out
}

// WithModules returns a snapshot carrying the same selection over a new module list.
func (s Snapshot) WithModules(modules []Module) Snapshot {
	out := Snapshot{Modules: modules}
	if s.SelectedLessonID != nil {
		id := *s.SelectedLessonID
		out.SelectedLessonID = &id
	}
	return out
}

// FindLesson returns the module index and lesson index of lessonID, or -1, -1.
func (s Snapshot) FindLesson(lessonID string) (int, int) {
	for mi := range s.Modules {
		for li := range s.Modules[mi].Lessons {
			if s.Modules[mi].Lessons[li].ID == lessonID {
				return mi, li
			}
		}
	}
	return -1, -1
}

func (s Snapshot) LessonCount() int {
	n := 0
	for i := range s.Modules {
		n += len(s.Modules[i].Lessons)
	}
	return n
}
