package protocol

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Tag identifies the fields embedded in a web-request correlation tag.
type Tag struct {
	ProtocolVersion  int
	ServerID         int32
	DeviceID         int64
	SessionNumber    int32
	SessionSequence  int32
	ApplicationID    string
	ParentActionID   int32
	ThreadID         int
	SequenceNumber   int32
	SplitTaggingUsed bool
}

// BuildTag renders the MT_ tag format described in §4.1. The session
// sequence segment is only emitted when splitTaggingUsed is true (i.e.
// visit-store-version > 1).
func BuildTag(t Tag) string {
	sessionPart := strconv.FormatInt(int64(t.SessionNumber), 10)
	if t.SplitTaggingUsed {
		sessionPart = fmt.Sprintf("%d-%d", t.SessionNumber, t.SessionSequence)
	}

	return fmt.Sprintf("MT_%d_%d_%d_%s_%s_%d_%d_%d",
		t.ProtocolVersion,
		t.ServerID,
		t.DeviceID,
		sessionPart,
		PercentEncode(t.ApplicationID),
		t.ParentActionID,
		t.ThreadID,
		t.SequenceNumber,
	)
}

// ParseTag reverses BuildTag. It returns ok=false if s does not match the
// expected shape.
func ParseTag(s string) (Tag, bool) {
	if !strings.HasPrefix(s, "MT_") {
		return Tag{}, false
	}
	parts := strings.Split(strings.TrimPrefix(s, "MT_"), "_")
	if len(parts) != 8 {
		return Tag{}, false
	}

	protoVer, err := strconv.Atoi(parts[0])
	if err != nil {
		return Tag{}, false
	}
	serverID, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return Tag{}, false
	}
	deviceID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Tag{}, false
	}

	sessionNumber, sessionSequence, split, err := parseSessionPart(parts[3])
	if err != nil {
		return Tag{}, false
	}

	appID, err := url.QueryUnescape(parts[4])
	if err != nil {
		return Tag{}, false
	}

	parentActionID, err := strconv.ParseInt(parts[5], 10, 32)
	if err != nil {
		return Tag{}, false
	}
	threadID, err := strconv.Atoi(parts[6])
	if err != nil {
		return Tag{}, false
	}
	sequenceNumber, err := strconv.ParseInt(parts[7], 10, 32)
	if err != nil {
		return Tag{}, false
	}

	return Tag{
		ProtocolVersion:  protoVer,
		ServerID:         int32(serverID),
		DeviceID:         deviceID,
		SessionNumber:    sessionNumber,
		SessionSequence:  sessionSequence,
		ApplicationID:    appID,
		ParentActionID:   int32(parentActionID),
		ThreadID:         threadID,
		SequenceNumber:   int32(sequenceNumber),
		SplitTaggingUsed: split,
	}, true
}

func parseSessionPart(s string) (sessionNumber, sessionSequence int32, split bool, err error) {
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		n, err1 := strconv.ParseInt(s[:idx], 10, 32)
		seq, err2 := strconv.ParseInt(s[idx+1:], 10, 32)
		if err1 != nil {
			return 0, 0, false, err1
		}
		if err2 != nil {
			return 0, 0, false, err2
		}
		return int32(n), int32(seq), true, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, 0, false, err
	}
	return int32(n), 0, false, nil
}
