package price

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"

	"heatpump-economics/internal/model"
)

// FitCache memoizes Fit by the content of the input series and the year.
//
// Entries are created once and never replaced or expired. Concurrent requests
// for the same key share one computation; different keys fit in parallel.
type FitCache struct {
	mu    sync.Mutex
	store map[string]*fitEntry

	// OnLookup, when set, is told whether each lookup was served from the cache.
	OnLookup func(hit bool)
}

type fitEntry struct {
	once sync.Once
	res  *FitResult
	err  error
}

// NewFitCache returns an empty cache.
func NewFitCache() *FitCache {
	return &FitCache{store: make(map[string]*fitEntry)}
}

// Fit returns the memoized fit for (points, year), computing it on first use.
// hit reports whether the result already existed.
func (c *FitCache) Fit(points []model.PricePoint, year int) (res *FitResult, hit bool, err error) {
	key := FitCacheKey(points, year)

	c.mu.Lock()
	entry, hit := c.store[key]
	if !hit {
		entry = &fitEntry{}
		c.store[key] = entry
	}
	c.mu.Unlock()

	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
	entry.once.Do(func() {
		entry.res, entry.err = Fit(points, year)
	})
	return entry.res, hit, entry.err
}

// Len is the number of cached keys.
func (c *FitCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// FitCacheKey hashes the year and every (timestamp, price) pair.
func FitCacheKey(points []model.PricePoint, year int) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(year)))
	h.Write(buf[:])
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[:], uint64(p.Time.UnixNano()))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(p.Price))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
