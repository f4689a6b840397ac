package parser

import "testing"

func TestNextToken(t *testing.T) {
	input := `sin(x) + 2.5 * x**2 - pi/e, `

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{IDENT, "sin"},
		{LPAREN, "("},
		{IDENT, "x"},
		{RPAREN, ")"},
		{PLUS, "+"},
		{NUMBER, "2.5"},
		{ASTERISK, "*"},
		{IDENT, "x"},
		{POW, "**"},
		{NUMBER, "2"},
		{MINUS, "-"},
		{IDENT, "pi"},
		{SLASH, "/"},
		{IDENT, "e"},
		{COMMA, ","},
		{EOF, ""},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestIllegalCharacters(t *testing.T) {
	for _, input := range []string{"x ; 1", "x & y", `"str"`, "a = b", "x[0]"} {
		l := NewLexer(input)
		sawIllegal := false
		for {
			tok := l.NextToken()
			if tok.Type == ILLEGAL {
				sawIllegal = true
			}
			if tok.Type == EOF {
				break
			}
		}
		if !sawIllegal {
			t.Errorf("expected ILLEGAL token for input %q", input)
		}
	}
}

func TestReadNumber(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"42", "42"},
		{"3.14159", "3.14159"},
		{"0.5", "0.5"},
		{"10.", "10"}, // trailing dot is not part of the number
	}

	for _, tt := range tests {
		l := NewLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != NUMBER {
			t.Fatalf("input %q: expected NUMBER, got %s", tt.input, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.literal, tok.Literal)
		}
	}
}
