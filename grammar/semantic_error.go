package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrNoStart             = newSemanticError("a grammar needs a start symbol")
	semErrNoStartProduction   = newSemanticError("the start symbol must have at least one production")
	semErrEmptyName           = newSemanticError("a symbol name must not be empty")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrDuplicateTerminal   = newSemanticError("duplicate terminal")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrTermCannotBeSkipped = newSemanticError("a terminal used in productions cannot be skipped")
	semErrDuplicateAssoc      = newSemanticError("a terminal already has an associativity and precedence")

	// Warning causes. These never fail a build.
	semErrUnusedTerminal  = newSemanticError("unused terminal")
	semErrUnreachableSym  = newSemanticError("unreachable symbol")
	semErrUnrealizableSym = newSemanticError("unrealizable symbol")
)
