package stopwatch

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStop_PrintsLabelAndDuration(t *testing.T) {
	sw := Start("indexing")
	var buf bytes.Buffer
	sw.out = &buf
	time.Sleep(time.Millisecond)

	d := sw.Stop()
	assert.Greater(t, d, time.Duration(0))
	assert.True(t, strings.HasPrefix(buf.String(), "indexing: "))
}
