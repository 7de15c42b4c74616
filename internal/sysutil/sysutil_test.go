package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevelAllVariants(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	trues := []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"}
	falses := []string{"", "0", "false", "no", "off", "n", "  ", "random"}

	for _, v := range trues {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false; want true", v)
		}
	}
	for _, v := range falses {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true; want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "a", "b"); got != "a" {
		t.Fatalf("FirstNonEmpty = %q; want a", got)
	}
	if got := FirstNonEmpty("", "  "); got != "" {
		t.Fatalf("FirstNonEmpty = %q; want empty", got)
	}
}
