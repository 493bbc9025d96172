package query

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokLParen
	tokRParen
	tokMinus
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind  tokenKind
	op    string
	value string
}

var operatorPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// lex splits q into tokens. Words without an operator are rejected here,
// the parser only ever sees operator terms, keywords and parentheses.
func lex(q string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(q) {
		r, size := utf8.DecodeRuneInString(q[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen})
			i += size
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen})
			i += size
		case r == '-':
			next, _ := utf8.DecodeRuneInString(q[i+size:])
			if i+size >= len(q) || unicode.IsSpace(next) || next == ')' {
				return nil, errors.New("dangling negation")
			}
			tokens = append(tokens, token{kind: tokMinus})
			i += size
		default:
			tok, n, err := lexWord(q[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += n
		}
	}
	return tokens, nil
}

func lexWord(s string) (token, int, error) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')' || r == ':' || r == '"'
	})
	if end < 0 {
		end = len(s)
	}
	word := s[:end]

	if end == len(s) || s[end] != ':' {
		switch word {
		case "AND":
			return token{kind: tokAnd}, end, nil
		case "OR":
			return token{kind: tokOr}, end, nil
		case "NOT":
			return token{kind: tokNot}, end, nil
		case "":
			return token{}, 0, errors.New("unexpected character")
		}
		return token{}, 0, errors.New("term without operator: " + word)
	}

	if word == "" {
		return token{}, 0, errors.New("missing operator")
	}
	if !operatorPattern.MatchString(word) {
		return token{}, 0, errors.New("malformed operator: " + word)
	}

	value, n, err := lexValue(s[end+1:])
	if err != nil {
		return token{}, 0, err
	}
	if value == "" {
		return token{}, 0, errors.New("missing value for operator " + word)
	}
	return token{kind: tokTerm, op: word, value: value}, end + 1 + n, nil
}

// lexValue reads a bare, "quoted" or {braced} operator value.
func lexValue(s string) (string, int, error) {
	if s == "" {
		return "", 0, nil
	}
	switch s[0] {
	case '"':
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				return b.String(), i + 1, nil
			default:
				b.WriteByte(s[i])
			}
		}
		return "", 0, errors.New("unterminated quoted value")
	case '{':
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return "", 0, errors.New("unterminated braced value")
		}
		return s[1:end], end + 1, nil
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')'
	})
	if end < 0 {
		end = len(s)
	}
	return s[:end], end, nil
}
