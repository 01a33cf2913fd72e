package api

import (
	"testing"
)

func TestNewJobID(t *testing.T) {
	id := NewJobID()
	if !ValidateJobID(id) {
		t.Errorf("NewJobID() = %q, want valid job ID", id)
	}
}

func TestNewMessageID(t *testing.T) {
	id := NewMessageID()
	if !ValidateMessageID(id) {
		t.Errorf("NewMessageID() = %q, want valid message ID", id)
	}
}

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "job_abcdefghijklmnopqrstuvwx", true},
		{"valid mixed case", "job_AbCdEfGhIjKlMnOpQrStUvWx", true},
		{"valid digits", "job_123456789012345678901234", true},
		{"wrong prefix", "msg_abcdefghijklmnopqrstuvwx", false},
		{"no prefix", "abcdefghijklmnopqrstuvwxyz1234", false},
		{"too short", "job_abc", false},
		{"too long", "job_abcdefghijklmnopqrstuvwxy", false},
		{"special chars", "job_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "job_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateJobID(tt.id); got != tt.want {
				t.Errorf("ValidateJobID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidateMessageID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "msg_abcdefghijklmnopqrstuvwx", true},
		{"wrong prefix", "job_abcdefghijklmnopqrstuvwx", false},
		{"too short", "msg_abc", false},
		{"special chars", "msg_abcdefghijklmnopqrstuv!@", false},
		{"empty", "", false},
		{"prefix only", "msg_", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateMessageID(tt.id); got != tt.want {
				t.Errorf("ValidateMessageID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIDUniqueness(t *testing.T) {
	const count = 1000
	seen := make(map[string]bool, count)

	for i := 0; i < count; i++ {
		id := NewJobID()
		if seen[id] {
			t.Fatalf("duplicate job ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}

	seen = make(map[string]bool, count)
	for i := 0; i < count; i++ {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate message ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}
