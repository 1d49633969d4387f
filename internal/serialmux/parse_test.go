package serialmux

import "testing"

func TestClassifyLine(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"47,12.5,1830", EventTypeScanSample},
		{"15,359.8,210", EventTypeScanSample},
		{"# lidar health good", EventTypeStatus},
		{"#boot", EventTypeStatus},
		{"OK", EventTypeAck},
		{"OK V:base_rotation=40", EventTypeAck},
		{"ERR unknown axis", EventTypeAck},
		{"", EventTypeUnknown},
		{"garbage", EventTypeUnknown},
		{"1,2", EventTypeUnknown},
		{"a,b,c,d", EventTypeUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyLine(tc.line); got != tc.want {
			t.Errorf("ClassifyLine(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
