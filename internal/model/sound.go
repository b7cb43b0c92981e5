package model

import (
	"encoding/json"
	"time"
)

// Tag is one category value from the fixed sound vocabulary.
type Tag string

const (
	TagSoundBite   Tag = "SoundBite"
	TagMusic       Tag = "Music"
	TagFoley       Tag = "Foley"
	TagSoundEffect Tag = "SoundEffect"
	TagAmbient     Tag = "Ambient"
)

// AllTags lists the full tag vocabulary in canonical order.
var AllTags = []Tag{TagSoundBite, TagMusic, TagFoley, TagSoundEffect, TagAmbient}

// Valid reports whether the tag belongs to the vocabulary.
func (t Tag) Valid() bool {
	switch t {
	case TagSoundBite, TagMusic, TagFoley, TagSoundEffect, TagAmbient:
		return true
	}
	return false
}

// ParseTags decodes a serialized tag list (JSON array of strings) into a
// deduplicated tag set. The policy is deliberately lenient: malformed input,
// or any value outside the vocabulary, yields ok=false and an empty set so
// that an upload never fails over its tags alone. Callers log the rejection.
func ParseTags(raw string) ([]Tag, bool) {
	if raw == "" {
		return []Tag{}, true
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []Tag{}, false
	}
	seen := make(map[Tag]struct{}, len(values))
	tags := make([]Tag, 0, len(values))
	for _, v := range values {
		t := Tag(v)
		if !t.Valid() {
			return []Tag{}, false
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags, true
}

// BlobRef links a sound record to exactly one committed blob object.
// The blob must be fully written before a record carrying the reference exists.
type BlobRef struct {
	FileID      string    `json:"file_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Sound represents one uploaded audio record.
// This is a pure domain model with no database-specific dependencies or tags.
type Sound struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []Tag     `json:"tags"`
	Blob        BlobRef   `json:"blob_ref"`
	Author      *UserRef  `json:"author,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
