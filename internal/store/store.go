// Package store persists client-side state between runs: the session
// credential and the hashes of applied record manifests.
package store

import (
	"context"
	"errors"
)

// ErrNoCredential is returned when nobody is logged in.
var ErrNoCredential = errors.New("no stored credential")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	GetCredential(ctx context.Context) (*Credential, error)
	SaveCredential(ctx context.Context, cred Credential) error
	ClearCredential(ctx context.Context) error

	GetManifestHashes(ctx context.Context, panel string) (map[string]string, error)
	PutManifest(ctx context.Context, m Manifest) error
	RemoveStaleManifests(ctx context.Context, panel string, currentSourceFiles []string) (int64, error)
}
