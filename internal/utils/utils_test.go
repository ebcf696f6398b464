package utils

import (
	"testing"
	"time"
)

func TestIsValidURL(t *testing.T) {
	tests := map[string]bool{
		"https://shop.example.com/p/1": true,
		"http://localhost:8080/a":      true,
		"ftp://example.com/file":       false,
		"/relative/path":               false,
		"":                             false,
		"not a url":                    false,
	}
	for in, want := range tests {
		if got := IsValidURL(in); got != want {
			t.Errorf("IsValidURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  £19\n\t .99  ")
	if got != "£19 .99" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("ราคา 1,290 บาท", 6); got != "ราค..." {
		t.Errorf("rune truncation got %q", got)
	}
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestDetectCharset(t *testing.T) {
	if got := DetectCharset(`text/html; charset="Windows-1252"`); got != "Windows-1252" {
		t.Errorf("got %q", got)
	}
	if got := DetectCharset("text/html"); got != "" {
		t.Errorf("got %q", got)
	}
	if got := DetectCharset("Text/HTML; CHARSET=utf-8"); got != "utf-8" {
		t.Errorf("got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Errorf("got %q", got)
	}
	if got := FormatDuration(90 * time.Second); got != "1.5m" {
		t.Errorf("got %q", got)
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger().WithField("url", "https://example.com").WithFields(map[string]interface{}{"n": 1})
	l.Infof("processed %d", 1)
	l.Error("discarded")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger("loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
	l, err := NewLogger("debug", "console")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Debug("ok")
}
