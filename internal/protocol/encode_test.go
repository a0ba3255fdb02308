package protocol_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/protocol"
)

func TestPercentEncode_ReservedCharacters(t *testing.T) {
	out := protocol.PercentEncode("a_b c")

	assert.Equal(t, "a%5Fb%20c", out)
}

func TestTruncateName_TrimsAndCaps(t *testing.T) {
	name := "  " + strings.Repeat("x", protocol.MaxNameLength+50) + "  "

	out := protocol.TruncateName(name)

	assert.Len(t, []rune(out), protocol.MaxNameLength)
}

func TestTruncateReason_Caps(t *testing.T) {
	reason := strings.Repeat("y", protocol.MaxReasonLength+1)

	out := protocol.TruncateReason(reason)

	assert.Len(t, []rune(out), protocol.MaxReasonLength)
}

func TestTruncateStackTrace_UnderLimitUnchanged(t *testing.T) {
	trace := "line1\nline2\nline3"

	out := protocol.TruncateStackTrace(trace)

	assert.Equal(t, trace, out)
}

func TestTruncateStackTrace_CutsAtLastNewlineExcludingIt(t *testing.T) {
	line := strings.Repeat("a", 100)
	var b strings.Builder
	lines := protocol.MaxStackTraceLength/101 + 5
	for i := 0; i < lines; i++ {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	trace := b.String()

	out := protocol.TruncateStackTrace(trace)

	assert.LessOrEqual(t, len([]rune(out)), protocol.MaxStackTraceLength)
	assert.False(t, strings.HasSuffix(out, "\n"))
	assert.True(t, strings.HasSuffix(out, line) || out == "")
}

func TestFormatKV_EncodesValue(t *testing.T) {
	out := protocol.FormatKV("na", "hello world")

	assert.Equal(t, "na=hello%20world", out)
}

func TestFormatKVInt(t *testing.T) {
	out := protocol.FormatKVInt("t0", 1234)

	assert.Equal(t, "t0=1234", out)
}
