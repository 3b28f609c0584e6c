package queryengine

import (
	"strings"

	"github.com/corpuslex/corpuslex/internal/stemmer"
)

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind kind
	term string
}

type kind = tokenKind

// tokenize lexes a query string into TERM/AND/OR/NOT/LPAREN/RPAREN
// tokens, lowercasing and stemming term runs, then inserts implicit AND
// between adjacent operand-ending and operand-starting tokens.
func tokenize(query string) []token {
	var raw []token
	i := 0
	n := len(query)
	for i < n {
		c := query[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '&' && i+1 < n && query[i+1] == '&':
			raw = append(raw, token{kind: tokAnd})
			i += 2
		case c == '|' && i+1 < n && query[i+1] == '|':
			raw = append(raw, token{kind: tokOr})
			i += 2
		case c == '!':
			raw = append(raw, token{kind: tokNot})
			i++
		case c == '(':
			raw = append(raw, token{kind: tokLParen})
			i++
		case c == ')':
			raw = append(raw, token{kind: tokRParen})
			i++
		case isAlnum(c):
			start := i
			for i < n && isAlnum(query[i]) {
				i++
			}
			term := stemmer.Stem(strings.ToLower(query[start:i]))
			raw = append(raw, token{kind: tokTerm, term: term})
		default:
			i++ // silently skip any other byte
		}
	}
	return insertImplicitAnd(raw)
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// insertImplicitAnd inserts AND between a token that can end an operand
// (TERM, RPAREN) and one that can begin one (TERM, LPAREN, NOT).
func insertImplicitAnd(in []token) []token {
	if len(in) == 0 {
		return in
	}
	out := make([]token, 0, len(in)+len(in)/2)
	out = append(out, in[0])
	for i := 1; i < len(in); i++ {
		prev := in[i-1]
		cur := in[i]
		if (prev.kind == tokTerm || prev.kind == tokRParen) &&
			(cur.kind == tokTerm || cur.kind == tokLParen || cur.kind == tokNot) {
			out = append(out, token{kind: tokAnd})
		}
		out = append(out, cur)
	}
	return out
}
