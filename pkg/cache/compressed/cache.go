// Package compressed wraps another cache with gzip compression and a
// checksum, keeping large JSON payloads cheap to store in redis.
package compressed

import (
	"bytes"
	"compress/gzip"
	"crypto/md5" // nolint:gosec
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/simsonbaroi/OrionAiTesting/pkg/cache"
)

const cachePrefix = "cc:"

// checksumLen is the length of the md5 sum appended to each entry.
const checksumLen = 16

type Cache struct {
	backing cache.Cache
}

func NewCompressedCache(c cache.Cache) *Cache {
	return &Cache{backing: c}
}

func (c Cache) Get(key string) ([]byte, error) {
	stored, err := c.backing.Get(cachePrefix + key)
	if err != nil {
		return nil, err
	}
	if len(stored) < checksumLen {
		return nil, fmt.Errorf("cache entry too short to carry a checksum")
	}

	data := stored[:len(stored)-checksumLen]
	var sum [checksumLen]byte
	copy(sum[:], stored[len(stored)-checksumLen:])
	return uncompress(data, sum)
}

func (c Cache) Set(key string, content []byte, duration time.Duration) error {
	if len(content) == 0 {
		log.Warningf("refusing to cache empty content for key %s", key)
		return nil
	}

	data, sum, err := compress(content)
	if err != nil {
		return err
	}
	data = append(data, sum[:]...)

	log.Debugf("cached %s: %d bytes compressed to %d", key, len(content), len(data))
	return c.backing.Set(cachePrefix+key, data, duration)
}

func compress(value []byte) ([]byte, [checksumLen]byte, error) {
	sum := md5.Sum(value) // nolint:gosec

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return nil, sum, err
	}
	if err := zw.Close(); err != nil {
		return nil, sum, err
	}
	return buf.Bytes(), sum, nil
}

func uncompress(value []byte, expectedSum [checksumLen]byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(value))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(zr); err != nil {
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}

	if md5.Sum(out.Bytes()) != expectedSum { // nolint:gosec
		return nil, fmt.Errorf("cache entry checksum mismatch")
	}
	return out.Bytes(), nil
}
