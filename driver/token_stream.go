package driver

import (
	"io"

	spec "github.com/johnrickE/compylr/spec/grammar"
	mldriver "github.com/nihei9/maleeni/driver"
)

// VToken is a token the parser consumes. TerminalID reports the terminal
// number the token's lexical kind maps to.
type VToken interface {
	TerminalID() int
	Lexeme() []byte
	EOF() bool
	Invalid() bool

	// Position returns the row and the column the token appeared at, both
	// counted from zero.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *vToken) TerminalID() int {
	return t.terminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row, t.tok.Col
}

type tokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []int
}

func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.LexicalSpecification.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: g.LexicalSpecification.Maleeni.KindToTerminal,
		skip:           g.LexicalSpecification.Maleeni.Skip,
	}, nil
}

// Next returns the next token the parser should see. Tokens of skip kinds
// are consumed here and never surface.
func (l *tokenStream) Next() (VToken, error) {
	for {
		// We don't have to check whether the token is invalid because the kind ID of the invalid token is 0,
		// and the parsing table doesn't have an entry corresponding to the kind ID 0. Thus we can detect
		// a syntax error because the parser cannot find an entry corresponding to the invalid token.
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}

		if l.skip[tok.KindID] > 0 {
			continue
		}

		return &vToken{
			terminalID: l.kindToTerminal[tok.KindID],
			tok:        tok,
		}, nil
	}
}
