package ddl

import (
	"strconv"
	"strings"
)

// defaultFuncs is the fixed set of function expressions accepted in a
// DEFAULT clause. Everything else the generation layer invents is dropped.
var defaultFuncs = map[string]bool{
	"now()":             true,
	"current_timestamp": true,
	"current_date":      true,
	"current_time":      true,
	"gen_random_uuid()": true,
}

// SafeDefault validates a raw default expression against a narrow
// allow-listed grammar: quoted string literal, numeric literal,
// true/false/null, or one of defaultFuncs. It returns the expression to
// interpolate and whether it was accepted. Rejected expressions are
// omitted from the DDL entirely.
func SafeDefault(raw string) (string, bool) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return "", false
	}

	lower := strings.ToLower(expr)
	switch lower {
	case "true", "false", "null":
		return strings.ToUpper(lower), true
	}
	if defaultFuncs[lower] {
		return lower, true
	}

	// Numeric literal.
	if _, err := strconv.ParseFloat(expr, 64); err == nil {
		return expr, true
	}

	// Single-quoted string literal with no embedded quote.
	if len(expr) >= 2 && expr[0] == '\'' && expr[len(expr)-1] == '\'' &&
		!strings.Contains(expr[1:len(expr)-1], "'") {
		return expr, true
	}

	return "", false
}
