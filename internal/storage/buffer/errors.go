package buffer

import "github.com/pkg/errors"

// ErrFrameNotEvictable is the policy-violation error Replacer.Remove
// panics with when asked to remove a frame that is still pinned.
var ErrFrameNotEvictable = errors.New("buffer: Remove called on a non-evictable frame")
