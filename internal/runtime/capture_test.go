// SPDX-License-Identifier: MPL-2.0

package runtime

import "testing"

func TestCappedBuffer(t *testing.T) {
	t.Parallel()

	b := newCappedBuffer(5)
	for _, chunk := range []string{"abc", "def", "ghi"} {
		n, err := b.Write([]byte(chunk))
		if err != nil || n != len(chunk) {
			t.Fatalf("Write(%q) = %d, %v", chunk, n, err)
		}
	}
	if !b.truncated {
		t.Error("expected truncation")
	}
	if got := b.String(); got != "abcde\n[output truncated after 5 bytes]" {
		t.Errorf("String() = %q", got)
	}

	small := newCappedBuffer(0)
	_, _ = small.Write([]byte("ok"))
	if small.String() != "ok" || small.limit != DefaultMaxOutputBytes {
		t.Errorf("default limit not applied: %q %d", small.String(), small.limit)
	}
}
