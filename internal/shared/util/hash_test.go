package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestWorkKey(t *testing.T) {
	key := WorkKey("prod-1", "what_is_it", "clarity_gap", "some text", "v1")
	if key != WorkKey("prod-1", "what_is_it", "clarity_gap", "some text", "v1") {
		t.Fatal("expected stable key for identical parts")
	}
	if len(key) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(key))
	}
	if WorkKey("ab", "c") == WorkKey("a", "bc") {
		t.Fatal("expected boundary-shifted parts to produce distinct keys")
	}
	if WorkKey("prod-1", "what_is_it", "clarity_gap", "some text", "v1") ==
		WorkKey("prod-1", "what_is_it", "clarity_gap", "other text", "v1") {
		t.Fatal("expected different content to produce distinct keys")
	}
}
