package ddl

import (
	"regexp"
	"strings"
	"testing"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "users", "users"},
		{"uppercase", "UserAccounts", "useraccounts"},
		{"spaces and punctuation", "order items!", "order_items_"},
		{"sql injection attempt", `users"; DROP TABLE x; --`, "users___drop_table_x____"},
		{"leading digit", "9lives", "col_9lives"},
		{"reserved word", "select", "col_select"},
		{"reserved word mixed case", "SeLeCt", "col_select"},
		{"empty", "", "col_"},
		{"unicode", "仕様テーブル", "______"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeInvariants(t *testing.T) {
	inputs := []string{
		"users", "9abc", "", "select", "DROP", "a b c", "___",
		strings.Repeat("x", 200), strings.Repeat("9", 80),
		`weird"name'with;everything`, "テスト", "CamelCaseName_42",
	}

	for _, in := range inputs {
		got := Sanitize(in)
		if !identPattern.MatchString(got) {
			t.Errorf("Sanitize(%q) = %q does not match identifier pattern", in, got)
		}
		if len(got) > MaxIdentifierLen {
			t.Errorf("Sanitize(%q) = %q exceeds %d bytes", in, got, MaxIdentifierLen)
		}
		// Idempotence: sanitizing a sanitized name is a no-op.
		if again := Sanitize(got); again != got {
			t.Errorf("Sanitize not idempotent for %q: %q -> %q", in, got, again)
		}
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 100))
	if len(got) != MaxIdentifierLen {
		t.Errorf("Expected %d bytes, got %d", MaxIdentifierLen, len(got))
	}
}
