//go:build rwarc_cachelinesize_64

package opt

// CacheLineSize_ is force-set to 64 bytes via the rwarc_cachelinesize_64
// build tag.
// Use: go build -tags=rwarc_cachelinesize_64
const CacheLineSize_ = 64
