package lexer

import (
	"fmt"
	"unicode/utf8"

	"sst/internal/errors"
)

type TokenType string

const (
	// Keywords
	TokenLet   TokenType = "LET"
	TokenConst TokenType = "CONST"
	TokenIf    TokenType = "IF"
	TokenElse  TokenType = "ELSE"
	TokenWhile TokenType = "WHILE"
	TokenPrint TokenType = "PRINT"
	TokenWrite TokenType = "WRITE"

	// Type names
	TokenIntType    TokenType = "INT_T"
	TokenFloatType  TokenType = "FLOAT_T"
	TokenBoolType   TokenType = "BOOL_T"
	TokenStringType TokenType = "STRING_T"

	// Literals
	TokenTrue   TokenType = "TRUE"
	TokenFalse  TokenType = "FALSE"
	TokenIdent  TokenType = "IDENT"
	TokenInt    TokenType = "INT"
	TokenFloat  TokenType = "FLOAT"
	TokenString TokenType = "STRING"

	// Operators and punctuation
	TokenLParen      TokenType = "("
	TokenRParen      TokenType = ")"
	TokenLBrace      TokenType = "{"
	TokenRBrace      TokenType = "}"
	TokenPlus        TokenType = "+"
	TokenMinus       TokenType = "-"
	TokenStar        TokenType = "*"
	TokenSlash       TokenType = "/"
	TokenEqual       TokenType = "="
	TokenDoubleEqual TokenType = "=="
	TokenNotEqual    TokenType = "!="
	TokenLT          TokenType = "<"
	TokenGT          TokenType = ">"
	TokenLE          TokenType = "<="
	TokenGE          TokenType = ">="
	TokenAnd         TokenType = "&&"
	TokenOr          TokenType = "||"
	TokenNot         TokenType = "!"
	TokenComma       TokenType = ","
	TokenSemicolon   TokenType = ";"
	TokenEOF         TokenType = "EOF"
)

// Token is an immutable lexical unit. For string literals Lexeme holds
// the unescaped content without quotes.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("[%s] '%s' %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"let":    TokenLet,
	"const":  TokenConst,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"print":  TokenPrint,
	"write":  TokenWrite,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"int":    TokenIntType,
	"float":  TokenFloatType,
	"bool":   TokenBoolType,
	"string": TokenStringType,
}

type Scanner struct {
	source   string
	tokens   []Token
	start    int
	current  int
	line     int
	col      int // column of s.current, 1-based
	startLn  int
	startCol int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
		col:    1,
	}
}

// ScanTokens lexes the whole source. It stops at the first error.
func (s *Scanner) ScanTokens() ([]Token, error) {
	for !s.isAtEnd() {
		s.skipWhitespace()
		if s.isAtEnd() {
			break
		}
		s.start = s.current
		s.startLn = s.line
		s.startCol = s.col
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Line: s.line, Column: s.col})
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(TokenLParen)
	case ')':
		s.addToken(TokenRParen)
	case '{':
		s.addToken(TokenLBrace)
	case '}':
		s.addToken(TokenRBrace)
	case ',':
		s.addToken(TokenComma)
	case ';':
		s.addToken(TokenSemicolon)
	case '+':
		s.addToken(TokenPlus)
	case '-':
		s.addToken(TokenMinus)
	case '*':
		s.addToken(TokenStar)
	case '/':
		if s.match('/') {
			// Line comment, discarded.
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(TokenSlash)
		}
	case '=':
		if s.match('=') {
			s.addToken(TokenDoubleEqual)
		} else {
			s.addToken(TokenEqual)
		}
	case '!':
		if s.match('=') {
			s.addToken(TokenNotEqual)
		} else {
			s.addToken(TokenNot)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokenLE)
		} else {
			s.addToken(TokenLT)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokenGE)
		} else {
			s.addToken(TokenGT)
		}
	case '&':
		if s.match('&') {
			s.addToken(TokenAnd)
		} else {
			return s.errorf(errors.UnexpectedCharacter, "unexpected character '&'")
		}
	case '|':
		if s.match('|') {
			s.addToken(TokenOr)
		} else {
			return s.errorf(errors.UnexpectedCharacter, "unexpected character '|'")
		}
	case '"':
		return s.string()
	case '.':
		// A float must start with a digit; a bare '.' is not a token.
		return s.errorf(errors.InvalidNumber, "number cannot start with '.'")
	default:
		if isDigit(c) {
			return s.number()
		}
		if isAlpha(c) {
			s.identifier()
			return nil
		}
		if c >= utf8.RuneSelf {
			return s.errorf(errors.UnexpectedCharacter, "non-ASCII character outside string literal")
		}
		return s.errorf(errors.UnexpectedCharacter, fmt.Sprintf("unexpected character %q", c))
	}
	return nil
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if kw, ok := keywords[text]; ok {
		s.addToken(kw)
		return
	}
	s.addToken(TokenIdent)
}

func (s *Scanner) number() error {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() != '.' {
		s.addToken(TokenInt)
		return nil
	}
	// Exactly one '.' followed by at least one digit.
	s.advance()
	if !isDigit(s.peek()) {
		return s.errorf(errors.InvalidNumber, "expected digits after '.'")
	}
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' {
		return s.errorf(errors.InvalidNumber, "number contains more than one '.'")
	}
	s.addToken(TokenFloat)
	return nil
}

func (s *Scanner) string() error {
	var value []byte
	for {
		if s.isAtEnd() || s.peek() == '\n' {
			return s.errorf(errors.UnterminatedString, "unterminated string literal")
		}
		c := s.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if s.isAtEnd() {
				return s.errorf(errors.UnterminatedString, "unterminated string literal")
			}
			esc := s.advance()
			switch esc {
			case '"':
				value = append(value, '"')
			case '\\':
				value = append(value, '\\')
			case 'n':
				value = append(value, '\n')
			default:
				return s.errorf(errors.UnexpectedCharacter, fmt.Sprintf("invalid escape '\\%c'", esc))
			}
			continue
		}
		value = append(value, c)
	}
	s.tokens = append(s.tokens, Token{
		Type:   TokenString,
		Lexeme: string(value),
		Line:   s.startLn,
		Column: s.startCol,
	})
	return nil
}

func (s *Scanner) addToken(t TokenType) {
	s.tokens = append(s.tokens, Token{
		Type:   t,
		Lexeme: s.source[s.start:s.current],
		Line:   s.startLn,
		Column: s.startCol,
	})
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.advance()
	return true
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() && isSpace(s.peek()) {
		s.advance()
	}
}

func (s *Scanner) errorf(code errors.Code, msg string) error {
	return errors.New(errors.LexError, code, msg, s.startLn, s.startCol)
}

// Identifiers and whitespace are ASCII only; multi-byte UTF-8 is legal
// inside string literals and nowhere else.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
