package cache

import (
	"context"
	"strings"

	"github.com/diagramtool/diagramtool/pkg/errors"
)

// RedisKeyPrefix namespaces the keys written by [Open] to Redis.
const RedisKeyPrefix = "diagramtool:"

// Open returns the backend named by url:
//
//	""              file cache in DefaultDir
//	"none", "off"   NullCache
//	"mem://"        MemoryCache
//	"redis://..."   RedisCache (also rediss://)
//	anything else   file cache in that directory
func Open(ctx context.Context, url string) (Cache, error) {
	switch {
	case url == "":
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		return fileCache(dir)
	case url == "none" || url == "off":
		return NewNullCache(), nil
	case url == "mem://" || url == "memory":
		c, err := NewMemoryCache(0)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://"):
		c, err := NewRedisCache(ctx, url, RedisKeyPrefix)
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.Contains(url, "://"):
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported cache url %q", url)
	default:
		return fileCache(url)
	}
}

func fileCache(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
