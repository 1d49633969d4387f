package serialmux

import "strings"

const (
	EventTypeScanSample = "scan_sample"
	EventTypeStatus     = "status"
	EventTypeAck        = "ack"
	EventTypeUnknown    = "unknown"
)

// ClassifyLine inspects a bus line and returns a simple event type token.
// Lidar firmware emits comma-separated range samples, "#"-prefixed status
// lines, and "OK"/"ERR" command acknowledgements. The classification is
// intentionally conservative; real parsing happens in the device packages.
func ClassifyLine(line string) string {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return EventTypeUnknown
	case strings.HasPrefix(line, "#"):
		return EventTypeStatus
	case line == "OK" || strings.HasPrefix(line, "OK "), strings.HasPrefix(line, "ERR"):
		return EventTypeAck
	case strings.Count(line, ",") == 2:
		return EventTypeScanSample
	default:
		return EventTypeUnknown
	}
}
