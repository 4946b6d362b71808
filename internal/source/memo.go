package source

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

type memoResult struct {
	data []byte
	err  error
}

// MemoSource caches ReadFile results by path and collapses concurrent reads
// of the same path into one call to the wrapped source. Duplicate entries in
// a path list then cost a single remote fetch.
type MemoSource struct {
	src   Source
	group singleflight.Group
	cache sync.Map // path -> memoResult
}

func Memo(src Source) *MemoSource {
	return &MemoSource{src: src}
}

func (m *MemoSource) Name() string {
	return m.src.Name()
}

func (m *MemoSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if v, ok := m.cache.Load(path); ok {
		r := v.(memoResult)
		return r.data, r.err
	}

	v, _, _ := m.group.Do(path, func() (interface{}, error) {
		data, err := m.src.ReadFile(ctx, path)
		r := memoResult{data: data, err: err}
		// Cancellation says nothing about the path itself.
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			m.cache.Store(path, r)
		}
		return r, nil
	})
	r := v.(memoResult)
	return r.data, r.err
}
