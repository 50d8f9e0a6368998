// Package cache defines the byte cache contract used for expensive API
// responses.
package cache

import "time"

type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, content []byte, duration time.Duration) error
}
