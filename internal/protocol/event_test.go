package protocol_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyago/rumkit/internal/protocol"
)

func TestBuildEventPayload_ForcesReservedAttributes(t *testing.T) {
	payload, err := protocol.BuildEventPayload(
		map[string]any{"custom": "value", "dt.rum.sid": "spoofed"},
		protocol.EventEnvelopeParams{
			ApplicationID:   "app-1",
			InstanceID:      "instance-1",
			SessionTag:      "MT_3_1_1_1_app_0_1_1",
			EventNameOrType: "page_view",
			TimestampNanos:  1700000000000000000,
		},
	)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, "value", decoded["custom"])
	assert.Equal(t, "page_view", decoded["event.name"])
	assert.Equal(t, "RUM_EVENT", decoded["event.kind"])
	assert.Equal(t, "app-1", decoded["dt.rum.application.id"])
	assert.Equal(t, "MT_3_1_1_1_app_0_1_1", decoded["dt.rum.sid"])
	assert.Equal(t, "1.2", decoded["dt.rum.schema_version"])
}

func TestBuildEventPayload_BizEventUsesTypeField(t *testing.T) {
	payload, err := protocol.BuildEventPayload(map[string]any{}, protocol.EventEnvelopeParams{
		ApplicationID:   "app-1",
		IsBizEvent:      true,
		EventNameOrType: "checkout",
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, "checkout", decoded["event.type"])
	assert.Equal(t, "BIZ_EVENT", decoded["event.kind"])
	assert.NotContains(t, decoded, "event.name")
}

func TestBuildEventPayload_FlagsNonFiniteValues(t *testing.T) {
	payload, err := protocol.BuildEventPayload(
		map[string]any{"ratio": math.Inf(1)},
		protocol.EventEnvelopeParams{ApplicationID: "app-1", EventNameOrType: "calc"},
	)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))

	assert.Equal(t, true, decoded["dt.rum.has_nfn_values"])
	assert.Nil(t, decoded["ratio"])
}

func TestBuildEventPayload_RejectsOversizedPayload(t *testing.T) {
	big := strings.Repeat("z", protocol.MaxEventPayloadBytes+10)

	_, err := protocol.BuildEventPayload(
		map[string]any{"blob": big},
		protocol.EventEnvelopeParams{ApplicationID: "app-1", EventNameOrType: "huge"},
	)

	assert.Error(t, err)
}
