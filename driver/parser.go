package driver

import (
	"fmt"
	"strings"
)

// ParseError reports a syntax error: the state the driver stopped in, the
// token it could not consume, and the terminals that state accepts.
type ParseError struct {
	State             int
	Token             VToken
	ExpectedTerminals []string

	// Row and Col are the offending token's position, counted from zero.
	Row int
	Col int
}

func (e *ParseError) Error() string {
	var tok string
	switch {
	case e.Token.EOF():
		tok = "<eof>"
	case e.Token.Invalid():
		tok = fmt.Sprintf("'%v' (<invalid>)", string(e.Token.Lexeme()))
	default:
		tok = fmt.Sprintf("'%v'", string(e.Token.Lexeme()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: unexpected token: %v", e.Row+1, e.Col+1, tok)
	if len(e.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", e.ExpectedTerminals[0])
		for _, t := range e.ExpectedTerminals[1:] {
			fmt.Fprintf(&b, ", %v", t)
		}
	}
	return b.String()
}

type ParserOption func(p *Parser) error

// SemanticAction sets the semantic action set the driver calls on every
// shift, reduce, and accept.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

// frame is one entry of the parse stack. sym is the terminal number for a
// shifted frame and the non-terminal number for a reduced frame; the
// bottom frame holds neither.
type frame struct {
	state int
	sym   int
	value any
}

// Parser is the table-driven LR driver. It pulls tokens from a TokenStream
// and interprets the ACTION and GOTO tables of a Grammar. A Parser is for
// single use; the Grammar behind it is immutable and shareable.
type Parser struct {
	toks   TokenStream
	gram   Grammar
	frames []frame
	semAct SemanticActionSet
	synErr *ParseError
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		toks: toks,
		gram: gram,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse runs the shift-reduce loop until the input is accepted or a syntax
// error occurs. On a syntax error it returns a *ParseError; the driver
// performs no recovery.
func (p *Parser) Parse() error {
	p.frames = p.frames[:0]
	p.push(frame{
		state: p.gram.InitialState(),
	})

	tok, err := p.toks.Next()
	if err != nil {
		return err
	}

	for {
		term := p.tokenToTerminal(tok)
		act := p.gram.Action(p.top().state, term)
		switch {
		case act < 0: // Shift
			nextState := act * -1

			var v any
			if p.semAct != nil {
				v = p.semAct.Shift(tok)
			}
			p.push(frame{
				state: nextState,
				sym:   term,
				value: v,
			})

			tok, err = p.toks.Next()
			if err != nil {
				return err
			}
		case act > 0: // Reduce
			prodNum := act

			if prodNum == p.gram.StartProduction() {
				if p.semAct != nil {
					p.semAct.Accept(p.top().value)
				}
				return nil
			}

			n := p.gram.AlternativeSymbolCount(prodNum)
			lhs := p.gram.LHS(prodNum)

			var v any
			if p.semAct != nil {
				handle := make([]any, n)
				for i, f := range p.frames[len(p.frames)-n:] {
					handle[i] = f.value
				}
				v = p.semAct.Reduce(prodNum, handle)
			}

			p.pop(n)
			p.push(frame{
				state: p.gram.GoTo(p.top().state, lhs),
				sym:   lhs,
				value: v,
			})
		default: // Error
			row, col := tok.Position()
			p.synErr = &ParseError{
				State:             p.top().state,
				Token:             tok,
				ExpectedTerminals: p.expectedTerminals(p.top().state),
				Row:               row,
				Col:               col,
			}
			return p.synErr
		}
	}
}

// SyntaxError returns the error of the last Parse call, or nil when the
// input was accepted.
func (p *Parser) SyntaxError() *ParseError {
	return p.synErr
}

func (p *Parser) tokenToTerminal(tok VToken) int {
	if tok.EOF() {
		return p.gram.EOF()
	}

	return tok.TerminalID()
}

func (p *Parser) expectedTerminals(state int) []string {
	terms := p.gram.ExpectedTerminals(state)
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = p.gram.Terminal(t)
	}
	return names
}

func (p *Parser) top() frame {
	return p.frames[len(p.frames)-1]
}

func (p *Parser) push(f frame) {
	p.frames = append(p.frames, f)
}

func (p *Parser) pop(n int) {
	p.frames = p.frames[:len(p.frames)-n]
}
