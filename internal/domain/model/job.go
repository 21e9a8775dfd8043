package model

import "time"

// Job is one game submitted for conversion. Payload holds the provider's raw
// event document.
type Job struct {
	ID          string    `json:"id"`
	Game        Game      `json:"game"`
	Provider    string    `json:"provider"`
	Payload     []byte    `json:"-"`
	SubmittedAt time.Time `json:"submitted_at"`
}
