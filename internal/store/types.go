package store

import "time"

// Credential is the bearer token and display name of the logged-in user.
type Credential struct {
	Token    string
	Username string
	SavedAt  time.Time
}

// Manifest records the last applied version of one manifest file.
type Manifest struct {
	Panel      string
	SourceFile string
	RecordID   string
	SourceHash string
	AppliedAt  time.Time
}
