package utils

import (
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "bytes", bytes: 500, expected: "500 B"},
		{name: "kilobytes", bytes: 1024, expected: "1.0 KB"},
		{name: "megabytes", bytes: 1024 * 1024, expected: "1.0 MB"},
		{name: "gigabytes", bytes: 1024 * 1024 * 1024, expected: "1.0 GB"},
		{name: "fractional MB", bytes: 1536 * 1024, expected: "1.5 MB"},
		{name: "zero bytes", bytes: 0, expected: "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBytes(tt.bytes); got != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{name: "seconds only", seconds: 5, expected: "5s"},
		{name: "minutes and seconds", seconds: 150, expected: "2m 30s"},
		{name: "whole minutes", seconds: 120, expected: "2m"},
		{name: "hours and minutes", seconds: 4500, expected: "1h 15m"},
		{name: "whole hours", seconds: 7200, expected: "2h"},
		{name: "negative is unknown", seconds: -1, expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:54321", true},
		{"http://127.0.0.1:8080", true},
		{"http://[::1]:8080", true},
		{"http://LOCALHOST", true},
		{"http://example.com", false},
		{"http://192.168.1.10", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		if got := IsLocalhost(tt.url); got != tt.want {
			t.Errorf("IsLocalhost(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
