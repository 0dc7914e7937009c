package builder

import (
	"errors"
	"testing"
)

func TestDecodeSnapshot(t *testing.T) {
	raw := []byte(`{
		"selectedLessonId": "l1",
		"modules": [
			{"id": "m1", "title": "Intro", "position": 0, "lessons": [
				{"id": "l1", "title": "Welcome", "position": 0, "contentType": "Video", "isPreview": true}
			]},
			{"id": "m2", "title": "Empty", "position": 1, "lessons": null}
		]
	}`)
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(snap.Modules) != 2 || snap.Modules[0].Lessons[0].ContentType != ContentVideo {
		t.Fatalf("decoded: %+v", snap)
	}
	if snap.SelectedLessonID == nil || *snap.SelectedLessonID != "l1" {
		t.Fatalf("selection lost")
	}
}

func TestDecodeSnapshotRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"modules": [`},
		{"missing modules", `{"selectedLessonId": null}`},
		{"lesson without content type", `{"modules": [{"id": "m", "title": "M", "lessons": [{"id": "l", "title": "L"}]}]}`},
		{"wrong type", `{"modules": [{"id": 7, "title": "M"}]}`},
		{"negative position", `{"modules": [{"id": "m", "title": "M", "position": -1}]}`},
		{"unknown content type", `{"modules": [{"id": "m", "title": "M", "lessons": [{"id": "l", "title": "L", "contentType": "slides"}]}]}`},
		{"duplicate ids", `{"modules": [{"id": "x", "title": "M", "lessons": [{"id": "x", "title": "L", "contentType": "text"}]}]}`},
		{"dangling selection", `{"selectedLessonId": "nope", "modules": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSnapshot([]byte(tt.raw)); !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("want ErrInvalidSnapshot got=%v", err)
			}
		})
	}
}
