// Package lua renders output records as a standalone Lua module and checks
// rendered modules with an embedded Lua VM.
package lua

import (
	"math"
	"strconv"
	"strings"

	"github.com/Skino1337/PyPoE/internal/etl"
)

// Format renders records as
//
//	local data = {
//		{
//			key=value,
//		},
//
//	}
//	return data
//
// Keys are written in record order. Text is quoted with embedded double
// quotes backslash-escaped; nothing else is escaped.
func Format(records []*etl.Record) string {
	var b strings.Builder
	b.WriteString("local data = {\n")
	for _, rec := range records {
		b.WriteString("\t{\n")
		rec.Each(func(key string, v etl.Value) {
			b.WriteString("\t\t")
			b.WriteString(key)
			b.WriteByte('=')
			writeValue(&b, v)
			b.WriteString(",\n")
		})
		b.WriteString("\t},\n")
	}
	b.WriteString("\n}")
	b.WriteString("\n")
	b.WriteString("return data")
	return b.String()
}

func writeValue(b *strings.Builder, v etl.Value) {
	switch v.Kind() {
	case etl.KindInt:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case etl.KindFloat:
		b.WriteString(formatFloat(v.Float()))
	case etl.KindList:
		b.WriteByte('{')
		for i, it := range v.Items() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, it)
		}
		b.WriteByte('}')
	default:
		b.WriteByte('"')
		b.WriteString(Escape(v.Text()))
		b.WriteByte('"')
	}
}

// Escape backslash-escapes double quotes.
func Escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// formatFloat writes the shortest literal that reads back as f. Integral
// values keep a trailing ".0" so they stay recognizable as floats.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0/0)"
	case math.IsInf(f, 1):
		return "math.huge"
	case math.IsInf(f, -1):
		return "-math.huge"
	}

	var s string
	if abs := math.Abs(f); f == 0 || (abs >= 1e-4 && abs < 1e16) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
