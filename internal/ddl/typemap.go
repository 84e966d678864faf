package ddl

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// Clamp bounds for parameterized types. The generation layer routinely
// asks for varchar(5000) or decimal(50,20); we trim instead of failing.
const (
	maxVarcharLen     = 1000
	defaultVarcharLen = 255
	maxPrecision      = 38
	maxScale          = 10
)

// physicalTypes maps every allowed base token to its physical column type.
// Anything not listed falls back to TEXT.
var physicalTypes = map[string]string{
	"serial":      "SERIAL",
	"bigserial":   "BIGSERIAL",
	"smallserial": "SMALLSERIAL",
	"int":         "INTEGER",
	"integer":     "INTEGER",
	"int4":        "INTEGER",
	"bigint":      "BIGINT",
	"int8":        "BIGINT",
	"smallint":    "SMALLINT",
	"int2":        "SMALLINT",
	"text":        "TEXT",
	"boolean":     "BOOLEAN",
	"bool":        "BOOLEAN",
	"date":        "DATE",
	"time":        "TIME",
	"timestamp":   "TIMESTAMP",
	"timestamptz": "TIMESTAMPTZ",
	"real":        "REAL",
	"float":       "DOUBLE PRECISION",
	"float8":      "DOUBLE PRECISION",
	"double":      "DOUBLE PRECISION",
	"json":        "JSON",
	"jsonb":       "JSONB",
	"uuid":        "UUID",
}

// MapType maps a free-form logical type string onto one of the fixed
// physical column types. The returned string never echoes raw input:
// unknown bases degrade to TEXT and parameterized types are re-rendered
// from parsed, clamped numbers.
func MapType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	base := t
	var params string
	if i := strings.Index(t, "("); i >= 0 {
		base = strings.TrimSpace(t[:i])
		params = t[i:]
	}

	switch base {
	case "varchar", "character varying":
		return fmt.Sprintf("VARCHAR(%d)", clampLength(params))
	case "char", "character", "bpchar":
		return fmt.Sprintf("CHAR(%d)", clampLength(params))
	case "decimal", "numeric":
		p, s := clampPrecisionScale(params)
		return fmt.Sprintf("DECIMAL(%d,%d)", p, s)
	}

	if phys, ok := physicalTypes[base]; ok {
		return phys
	}

	log.Printf("Warning: unknown column type %q, falling back to TEXT", raw)
	return "TEXT"
}

// IsSerial reports whether the raw logical type is one of the
// auto-incrementing integer forms.
func IsSerial(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "serial", "bigserial", "smallserial":
		return true
	}
	return false
}

// clampLength parses "(n)" and clamps n to [1, maxVarcharLen].
func clampLength(params string) int {
	n, ok := parseInts(params, 1)
	if !ok {
		return defaultVarcharLen
	}
	length := n[0]
	if length < 1 {
		length = 1
	}
	if length > maxVarcharLen {
		length = maxVarcharLen
	}
	return length
}

// clampPrecisionScale parses "(p,s)" and clamps to (<=38, <=10).
// Unparsable input yields the (10,2) default.
func clampPrecisionScale(params string) (int, int) {
	n, ok := parseInts(params, 2)
	if !ok {
		return 10, 2
	}
	p, s := n[0], n[1]
	if p < 1 {
		p = 1
	}
	if p > maxPrecision {
		p = maxPrecision
	}
	if s < 0 {
		s = 0
	}
	if s > maxScale {
		s = maxScale
	}
	if s > p {
		s = p
	}
	return p, s
}

func parseInts(params string, want int) ([]int, bool) {
	params = strings.TrimSpace(params)
	if !strings.HasPrefix(params, "(") || !strings.HasSuffix(params, ")") {
		return nil, false
	}
	parts := strings.Split(params[1:len(params)-1], ",")
	if len(parts) != want {
		return nil, false
	}
	out := make([]int, 0, want)
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}
