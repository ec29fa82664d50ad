// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"fmt"
)

// DefaultMaxOutputBytes caps each captured stream at 16 MiB.
const DefaultMaxOutputBytes int64 = 16 << 20

// cappedBuffer keeps at most limit bytes and silently drops the rest. It
// always reports a full write so the child never sees a broken pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func newCappedBuffer(limit int64) *cappedBuffer {
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - int64(c.buf.Len())
	switch {
	case room <= 0:
		c.truncated = true
	case int64(len(p)) > room:
		c.buf.Write(p[:room])
		c.truncated = true
	default:
		c.buf.Write(p)
	}
	return len(p), nil
}

// String returns the captured text, with a marker line when bytes were dropped.
func (c *cappedBuffer) String() string {
	if !c.truncated {
		return c.buf.String()
	}
	return fmt.Sprintf("%s\n[output truncated after %d bytes]", c.buf.String(), c.limit)
}
