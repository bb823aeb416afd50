// Package store provides the persistent key-value layer the companion
// service keeps its auth token, credentials and grade snapshot in. Two
// backends exist: a JSON file (default, single-device) and Redis.
package store

import "context"

// Keys persisted by the service.
const (
	KeyAuthToken = "auth_token"
	KeyStudentID = "student_id"
	KeyPassword  = "password"
	KeyGrades    = "grades"
)

// Store is a minimal string key-value contract. Get returns ErrKeyNotFound
// (pkg/errors) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
