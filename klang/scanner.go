package klang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reusee/klang/klangvm"
)

type scanner struct {
	file   string
	src    string
	pos    int
	line   int
	tokens []Token
}

func Scan(file string, src string) ([]Token, error) {
	return scanFrom(file, src, 1)
}

func scanFrom(file string, src string, line int) ([]Token, error) {
	s := &scanner{
		file: file,
		src:  src,
		line: line,
	}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

func (s *scanner) errorf(format string, args ...any) error {
	return &klangvm.Error{
		Kind:    klangvm.ScannerError,
		File:    s.file,
		Line:    s.line,
		Message: fmt.Sprintf(format, args...),
	}
}

func (s *scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

func (s *scanner) peekNext() byte {
	if s.pos+1 < len(s.src) {
		return s.src[s.pos+1]
	}
	return 0
}

func (s *scanner) match(c byte) bool {
	if s.peek() != c {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) add(t TokenType, lexeme string) {
	s.tokens = append(s.tokens, Token{
		Type:   t,
		Lexeme: lexeme,
		Line:   s.line,
	})
}

func (s *scanner) addEither(c byte, matched TokenType, otherwise TokenType) {
	if s.match(c) {
		s.add(matched, matched.String())
	} else {
		s.add(otherwise, otherwise.String())
	}
}

func (s *scanner) scan() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++

		switch c {
		case '(':
			s.add(TokenLeftParen, "(")
		case ')':
			s.add(TokenRightParen, ")")
		case '{':
			s.add(TokenLeftBrace, "{")
		case '}':
			s.add(TokenRightBrace, "}")
		case '[':
			s.add(TokenLeftBracket, "[")
		case ']':
			s.add(TokenRightBracket, "]")
		case ',':
			s.add(TokenComma, ",")
		case ';':
			s.add(TokenSemicolon, ";")
		case '+':
			s.add(TokenPlus, "+")
		case '-':
			s.add(TokenMinus, "-")
		case '*':
			s.add(TokenStar, "*")
		case '%':
			s.add(TokenPercent, "%")
		case '@':
			s.add(TokenAt, "@")
		case '/':
			if s.match('/') {
				for s.pos < len(s.src) && s.src[s.pos] != '\n' {
					s.pos++
				}
			} else {
				s.add(TokenSlash, "/")
			}
		case '!':
			s.addEither('=', TokenBangEqual, TokenBang)
		case '=':
			s.addEither('=', TokenEqualEqual, TokenEqual)
		case '>':
			s.addEither('=', TokenGreaterEqual, TokenGreater)
		case '<':
			s.addEither('=', TokenLessEqual, TokenLess)
		case '.':
			if !s.match('.') {
				return s.errorf("unexpected character '.'")
			}
			s.add(TokenRange, "..")
		case '&':
			if !s.match('&') {
				return s.errorf("missing a second &")
			}
			s.add(TokenAnd, "&&")
		case '|':
			if !s.match('|') {
				return s.errorf("missing a second |")
			}
			s.add(TokenOr, "||")
		case '"':
			if err := s.string(); err != nil {
				return err
			}
		case ' ', '\r', '\t':
		case '\n':
			s.line++
		default:
			switch {
			case isDigit(c):
				if err := s.number(); err != nil {
					return err
				}
			case isAlpha(c):
				s.identifier()
			default:
				return s.errorf("unexpected character %q", c)
			}
		}
	}
	s.add(TokenEOF, "")
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c == '_'
}

func (s *scanner) identifier() {
	start := s.pos - 1
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.pos++
	}
	word := s.src[start:s.pos]
	if t, ok := keywords[word]; ok {
		s.add(t, word)
		return
	}
	s.add(TokenIdentifier, word)
}

func (s *scanner) number() error {
	start := s.pos - 1
	for isDigit(s.peek()) {
		s.pos++
	}
	// 1..5 is a range, not a float
	if s.peek() == '.' && s.peekNext() != '.' {
		s.pos++
		if !isDigit(s.peek()) {
			return s.errorf("float cannot end with a dot")
		}
		for isDigit(s.peek()) {
			s.pos++
		}
	}
	text := s.src[start:s.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return s.errorf("invalid number %s", text)
	}
	s.tokens = append(s.tokens, Token{
		Type:   TokenNumber,
		Lexeme: text,
		Number: n,
		Line:   s.line,
	})
	return nil
}

func (s *scanner) string() error {
	startLine := s.line
	var text strings.Builder
	var parts []string
	for {
		if s.pos >= len(s.src) {
			s.line = startLine
			return s.errorf("unterminated string")
		}
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '"':
			s.tokens = append(s.tokens, Token{
				Type:   TokenString,
				Lexeme: text.String(),
				Parts:  parts,
				Line:   startLine,
			})
			return nil
		case '\n':
			s.line++
			text.WriteByte(c)
		case '{':
			start := s.pos
			depth := 1
			for s.pos < len(s.src) && depth > 0 {
				switch s.src[s.pos] {
				case '{':
					depth++
				case '}':
					depth--
				case '\n':
					s.line++
				}
				s.pos++
			}
			if depth > 0 {
				return s.errorf("unterminated interpolation")
			}
			expr := s.src[start : s.pos-1]
			if strings.TrimSpace(expr) == "" {
				return s.errorf("cannot print an empty expression")
			}
			parts = append(parts, expr)
			text.WriteString("{}")
		default:
			text.WriteByte(c)
		}
	}
}
