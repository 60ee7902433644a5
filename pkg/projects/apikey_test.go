package projects

import (
	"strings"
	"testing"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	if !strings.HasPrefix(key, "lv_live_") {
		t.Errorf("expected lv_live_ prefix, got %q", key)
	}
	if len(key) != len("lv_live_")+32 {
		t.Errorf("expected 32 character suffix, got %q", key)
	}

	for _, c := range key[len("lv_live_"):] {
		if !strings.ContainsRune(apiKeyAlphabet, c) {
			t.Errorf("unexpected character %q in key %q", c, key)
		}
	}
}

func TestGenerateAPIKeyVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("generated duplicate key %q", key)
		}
		seen[key] = struct{}{}
	}
}
