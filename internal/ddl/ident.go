package ddl

import (
	"strings"
)

// MaxIdentifierLen is the Postgres identifier length ceiling (NAMEDATALEN-1).
const MaxIdentifierLen = 63

// Reserved words we refuse as bare identifiers. Kept small on purpose:
// anything that survives sanitization is quoted in the generated DDL,
// these are just the tokens most likely to confuse downstream tooling.
var reservedWords = map[string]bool{
	"select": true, "insert": true, "update": true, "delete": true,
	"drop": true, "create": true, "alter": true, "table": true,
	"from": true, "where": true,
}

// Sanitize normalizes an arbitrary user/LLM-supplied name into an
// identifier that is safe to interpolate inside a double-quoted SQL
// identifier without further escaping. Pure and deterministic, and
// idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteByte(byte(r))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(byte(r) + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > MaxIdentifierLen {
		out = out[:MaxIdentifierLen]
	}

	if validIdentifier(out) {
		return out
	}

	// Rewrite rather than reject: the generation layer must never be able
	// to abort a whole batch with one bad name.
	out = "col_" + out
	if len(out) > MaxIdentifierLen {
		out = out[:MaxIdentifierLen]
	}
	if !leadingOK(out[0]) {
		out = "_" + out[1:]
	}
	return out
}

func validIdentifier(s string) bool {
	if s == "" || len(s) > MaxIdentifierLen {
		return false
	}
	if !leadingOK(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return !reservedWords[strings.ToLower(s)]
}

func leadingOK(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// QuoteIdent wraps a sanitized identifier in double quotes.
func QuoteIdent(name string) string {
	return `"` + name + `"`
}
