package protocol

import (
	"strconv"
	"strings"

	"github.com/voyago/rumkit/internal/apperror"
	"github.com/voyago/rumkit/internal/config"
)

// ParseStatusResponse parses a collector response body (new-session GET or
// beacon POST) formatted as key=value pairs joined by '&', per §6.
func ParseStatusResponse(body string) (*config.ServerConfiguration, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.New(apperror.CodeMalformedStatusResp, "empty status response", apperror.KindTransportError)
	}

	fields := make(map[string]string)
	for _, pair := range strings.Split(body, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		fields[kv[0]] = kv[1]
	}

	cfg := &config.ServerConfiguration{}

	cfg.CaptureEnabled = fields["cp"] == "1"
	cfg.CaptureErrorsEnabled = fields["er"] == "1"
	cfg.CaptureCrashesEnabled = fields["cr"] == "1"
	cfg.BeaconSizeBytes = atoiOrZero(fields["bl"])
	cfg.ServerID = int32(atoiOrZero(fields["id"]))
	cfg.TrafficControlPercentage = atoiOrZero(fields["tc"])
	cfg.SendIntervalMs = int64(atoiOrZero(fields["sr"])) * 1000
	cfg.Multiplicity = int32(atoiOrZero(fields["mp"]))
	cfg.SessionSplitByEventsEnabled = fields["ss"] == "1"
	cfg.MaxSessionDurationMs = int64(atoiOrZero(fields["md"]))
	cfg.SessionTimeoutMs = int64(atoiOrZero(fields["st"])) * 1000
	cfg.VisitStoreVersion = int32(atoiOrZero(fields["vs"]))

	if cfg.VisitStoreVersion == 0 {
		cfg.VisitStoreVersion = 1
	}

	return cfg, nil
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// IsErroneousStatus reports whether an HTTP status code from the collector
// counts as a failed exchange per §6 ("erroneous if status not in [200,400)").
func IsErroneousStatus(statusCode int) bool {
	return statusCode < 200 || statusCode >= 400
}
