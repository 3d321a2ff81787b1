//go:build rwarc_cachelinesize_256

package opt

// CacheLineSize_ is force-set to 256 bytes via the rwarc_cachelinesize_256
// build tag.
// Use: go build -tags=rwarc_cachelinesize_256
const CacheLineSize_ = 256
