package model

import "time"

// Comment is one user comment attached to a sound record.
type Comment struct {
	ID        string    `json:"id"`
	SoundID   string    `json:"sound_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"comment_text"`
	Author    *UserRef  `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
