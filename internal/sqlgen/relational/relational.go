// Package relational holds the identifier/literal quoting rules shared
// by every dialect's SQL generator. Each dialect generator composes
// this package rather than subclassing a shared base.
package relational

import "strings"

// QuoteBracket wraps name in SQL-Server-style [ ] delimiters, doubling
// any embedded closing bracket.
func QuoteBracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// QuoteDouble wraps name in SQLite/ANSI-style " " delimiters, doubling
// any embedded double quote.
func QuoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteStringLiteral wraps value in single quotes, doubling any embedded
// single quote. Shared across dialects: both SQL-Server and SQLite use
// ANSI string-literal escaping.
func QuoteStringLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// HexLiteralSQLServer renders a byte literal as SQL-Server's 0x… form.
func HexLiteralSQLServer(b []byte) string {
	return "0x" + strings.ToUpper(hexString(b))
}

// HexLiteralSQLite renders a byte literal as SQLite's X'…' form.
func HexLiteralSQLite(b []byte) string {
	return "X'" + strings.ToUpper(hexString(b)) + "'"
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0x0f]
	}
	return string(out)
}
