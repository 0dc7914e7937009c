package builder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType is the closed set of lesson kinds the builder understands.
// Values outside the set survive a round trip but get no duration and no badge.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentVideo      ContentType = "video"
	ContentQuiz       ContentType = "quiz"
	ContentAudio      ContentType = "audio"
	ContentAssignment ContentType = "assignment"
	ContentDownload   ContentType = "download"
)

var knownContentTypes = []ContentType{
	ContentText,
	ContentVideo,
	ContentQuiz,
	ContentAudio,
	ContentAssignment,
	ContentDownload,
}

func KnownContentTypes() []ContentType {
	out := make([]ContentType, len(knownContentTypes))
	copy(out, knownContentTypes)
	return out
}

func (c ContentType) Known() bool {
	for _, k := range knownContentTypes {
		if c == k {
			return true
		}
	}
	return false
}

func ParseContentType(raw string) (ContentType, error) {
	c := ContentType(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Known() {
		return c, fmt.Errorf("unknown content type %q", raw)
	}
	return c, nil
}

func (c *ContentType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ContentType(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}
