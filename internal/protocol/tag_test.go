package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/protocol"
)

func TestBuildTag_WithoutSplitTagging(t *testing.T) {
	tag := protocol.BuildTag(protocol.Tag{
		ProtocolVersion: 3,
		ServerID:        1,
		DeviceID:        42,
		SessionNumber:   7,
		ApplicationID:   "my app",
		ParentActionID:  0,
		ThreadID:        99,
		SequenceNumber:  1,
	})

	assert.Equal(t, "MT_3_1_42_7_my%20app_0_99_1", tag)
}

func TestBuildTag_WithSplitTagging(t *testing.T) {
	tag := protocol.BuildTag(protocol.Tag{
		ProtocolVersion:  3,
		ServerID:         1,
		DeviceID:         42,
		SessionNumber:    7,
		SessionSequence:  2,
		ApplicationID:    "app",
		ParentActionID:   5,
		ThreadID:         99,
		SequenceNumber:   3,
		SplitTaggingUsed: true,
	})

	assert.Equal(t, "MT_3_1_42_7-2_app_5_99_3", tag)
}

func TestParseTag_RoundTrip(t *testing.T) {
	original := protocol.Tag{
		ProtocolVersion:  3,
		ServerID:         2,
		DeviceID:         123456789,
		SessionNumber:    10,
		SessionSequence:  4,
		ApplicationID:    "my_app",
		ParentActionID:   8,
		ThreadID:         55,
		SequenceNumber:   12,
		SplitTaggingUsed: true,
	}

	built := protocol.BuildTag(original)
	parsed, ok := protocol.ParseTag(built)

	assert.True(t, ok)
	assert.Equal(t, original, parsed)
}

func TestParseTag_RejectsMalformed(t *testing.T) {
	_, ok := protocol.ParseTag("not-a-tag")

	assert.False(t, ok)
}

func TestParseTag_RejectsWrongPartCount(t *testing.T) {
	_, ok := protocol.ParseTag("MT_1_2_3")

	assert.False(t, ok)
}
