package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStart_DrawsAndClears(t *testing.T) {
	var buf syncBuffer
	stop := Start(&buf, "Counting compositions")
	time.Sleep(3 * interval)
	stop()
	stop()

	out := buf.String()
	assert.Contains(t, out, "Counting compositions")
	assert.Contains(t, out, frames[0])
	assert.True(t, strings.HasSuffix(out, "\r"), "line should be cleared on stop")
}

func TestStart_StopBeforeFirstFrame(t *testing.T) {
	var buf syncBuffer
	stop := Start(&buf, "quick")
	stop()
	assert.NotContains(t, buf.String(), "quick")
}
