package storage

import (
	"context"
	"fmt"
	"time"
)

// Object is one blob written to the results bucket.
type Object struct {
	Key          string
	ContentType  string
	CacheControl string
	Body         []byte
}

// StoredObject is what the bucket reports after a write.
type StoredObject struct {
	Key  string
	URL  string
	ETag string
	Size int
}

// ObjectStore writes tournament snapshots and resolves their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*StoredObject, error)
	PublicURL(key string) string
}

// ExportKey names the match list snapshot of a tournament taken at the given time.
// Keys under one tournament prefix sort by time.
func ExportKey(tournamentID int, at time.Time) string {
	return fmt.Sprintf("tournaments/%d/matches-%s.json", tournamentID, at.UTC().Format("20060102T150405Z"))
}
