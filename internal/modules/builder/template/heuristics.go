package template

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmhernandez2525/learning-hall/internal/domain/builder"
)

//go:embed heuristics.yaml
var defaultHeuristicsYAML []byte

// Heuristics is the duration table used to estimate lesson lengths.
type Heuristics struct {
	WordsPerMinute int                                 `yaml:"words_per_minute"`
	ContentTypes   map[builder.ContentType]ContentRule `yaml:"content_types"`
}

// ContentRule is a flat estimate, or a reading-time estimate when Reading is set.
type ContentRule struct {
	Minutes    int  `yaml:"minutes"`
	MinMinutes int  `yaml:"min_minutes"`
	Reading    bool `yaml:"reading"`
}

var defaultHeuristics = mustLoad(defaultHeuristicsYAML)

func DefaultHeuristics() Heuristics { return defaultHeuristics }

func LoadHeuristics(raw []byte) (Heuristics, error) {
	var h Heuristics
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return Heuristics{}, fmt.Errorf("parse heuristics: %w", err)
	}
	if h.WordsPerMinute <= 0 {
		return Heuristics{}, fmt.Errorf("words_per_minute must be positive")
	}
	for ct, rule := range h.ContentTypes {
		if !ct.Known() {
			return Heuristics{}, fmt.Errorf("heuristics reference unknown content type %q", ct)
		}
		if rule.Minutes < 0 || rule.MinMinutes < 0 {
			return Heuristics{}, fmt.Errorf("content type %q has negative minutes", ct)
		}
	}
	return h, nil
}

func mustLoad(raw []byte) Heuristics {
	h, err := LoadHeuristics(raw)
	if err != nil {
		panic(err)
	}
	return h
}

// LessonMinutes estimates how long a lesson takes. The result only depends on the
// lesson's content type and text.
func (h Heuristics) LessonMinutes(l builder.Lesson) int {
	rule, ok := h.ContentTypes[l.ContentType]
	if !ok {
		return 0
	}
	if !rule.Reading {
		return rule.Minutes
	}
	words := 0
	if l.ContentText != nil {
		words = len(strings.Fields(*l.ContentText))
	}
	minutes := int(math.Ceil(float64(words) / float64(h.WordsPerMinute)))
	if minutes < rule.MinMinutes {
		minutes = rule.MinMinutes
	}
	return minutes
}

// Hours converts total minutes to whole hours. Any content counts as at least one hour.
func Hours(totalMinutes int) int {
	if totalMinutes <= 0 {
		return 0
	}
	hours := int(math.Round(float64(totalMinutes) / 60))
	if hours < 1 {
		return 1
	}
	return hours
}
