// Package template turns a builder module tree into a reusable course template.
package template

import "github.com/dmhernandez2525/learning-hall/internal/domain/builder"

type LessonTemplate struct {
	Title             string              `json:"title"`
	ContentType       builder.ContentType `json:"contentType"`
	IsPreview         bool                `json:"isPreview"`
	EstimatedDuration int                 `json:"estimatedDuration"`
}

type ModuleTemplate struct {
	ModuleTitle string           `json:"moduleTitle"`
	Description string           `json:"description,omitempty"`
	HasQuiz     bool             `json:"hasQuiz"`
	Lessons     []LessonTemplate `json:"lessons"`
}

type Structure struct {
	Structure      []ModuleTemplate `json:"structure"`
	EstimatedHours int              `json:"estimatedHours"`
	TotalMinutes   int              `json:"totalMinutes"`
}

// Build uses the embedded default heuristics.
func Build(modules []builder.Module) Structure {
	return BuildWith(defaultHeuristics, modules)
}

func BuildWith(h Heuristics, modules []builder.Module) Structure {
	out := Structure{Structure: make([]ModuleTemplate, 0, len(modules))}
	for _, m := range modules {
		mt := ModuleTemplate{
			ModuleTitle: m.Title,
			Lessons:     make([]LessonTemplate, 0, len(m.Lessons)),
		}
		if m.Description != nil {
			mt.Description = *m.Description
		}
		for _, l := range m.Lessons {
			if l.ContentType == builder.ContentQuiz {
				mt.HasQuiz = true
			}
			minutes := h.LessonMinutes(l)
			out.TotalMinutes += minutes
			mt.Lessons = append(mt.Lessons, LessonTemplate{
				Title:             l.Title,
				ContentType:       l.ContentType,
				IsPreview:         l.IsPreview,
				EstimatedDuration: minutes,
			})
		}
		out.Structure = append(out.Structure, mt)
	}
	out.EstimatedHours = Hours(out.TotalMinutes)
	return out
}
