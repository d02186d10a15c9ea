package error

import (
	"fmt"
	"strings"
)

// GrammarError is a single defect found while building a grammar. Cause is a
// semantic cause value the caller can compare against, Detail names the
// symbol or production involved.
type GrammarError struct {
	Cause  error
	Detail string
}

func (e *GrammarError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %v", e.Cause)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %v", e.Detail)
	}
	return b.String()
}

func (e *GrammarError) Unwrap() error {
	return e.Cause
}

// GrammarErrors accumulates every defect found in one build pass.
type GrammarErrors []*GrammarError

func (e GrammarErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}
