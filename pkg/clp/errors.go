// Copyright 2016 The goclp Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clp

// Diagnostic helpers.  Parse functions return boolean success and leave a
// human readable message on WERROR or WWARNING.  The banner of a message is
// written in one router call; its text follows in one or more further calls.

import (
	"fmt"
	"strings"
)

// printErrorID writes the standard error banner.  When printCR is set the
// banner begins on a fresh line.
func (e *Environment) printErrorID(module string, id int, printCR bool) {
	var b strings.Builder
	if printCR {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "[%s%d] ", module, id)
	e.PrintRouter(WERROR, b.String())
}

// printWarningID writes the standard warning banner.
func (e *Environment) printWarningID(module string, id int, printCR bool) {
	var b strings.Builder
	if printCR {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "[%s%d] WARNING: ", module, id)
	e.PrintRouter(WWARNING, b.String())
}

// syntaxErrorMessage reports a syntax error in the named context.
func (e *Environment) syntaxErrorMessage(context string) {
	e.printErrorID("PRNTUTIL", 2, true)
	e.PrintRouter(WERROR, "Syntax Error")
	if context != "" {
		e.PrintRouter(WERROR, ":  Check appropriate syntax for "+context)
	}
	e.PrintRouter(WERROR, ".\n")
	e.SetEvaluationError(true)
}

// alreadyParsedErrorMessage reports a duplicate declaration.
func (e *Environment) alreadyParsedErrorMessage(what, kind string) {
	e.printErrorID("PRNTUTIL", 5, true)
	e.PrintRouter(WERROR, "The "+what+kind+" has already been parsed.\n")
	e.SetEvaluationError(true)
}

// cantFindItemErrorMessage reports a failed name lookup.
func (e *Environment) cantFindItemErrorMessage(itemType, itemName string) {
	e.printErrorID("PRNTUTIL", 1, true)
	e.PrintRouter(WERROR, "Unable to find "+itemType+" "+itemName+".\n")
	e.SetEvaluationError(true)
}

// expectedTypeError reports a token of the wrong type at a known argument
// position.
func (e *Environment) expectedTypeError(functionName string, whichArg int, expected string) {
	e.printErrorID("ARGACCES", 5, true)
	e.PrintRouter(WERROR, fmt.Sprintf("Function %s expected argument #%d to be of type %s.\n",
		functionName, whichArg, expected))
	e.SetEvaluationError(true)
}

// expectedCountError reports a call with the wrong number of arguments.
// countRelation is one of exactly, atLeast, or noMoreThan.
func (e *Environment) expectedCountError(functionName string, countRelation int, expected int) {
	e.printErrorID("ARGACCES", 4, true)
	var rel string
	switch countRelation {
	case exactly:
		rel = "exactly"
	case atLeast:
		rel = "at least"
	case noMoreThan:
		rel = "no more than"
	}
	e.PrintRouter(WERROR, fmt.Sprintf("Function %s expected %s %d argument(s).\n",
		functionName, rel, expected))
	e.SetEvaluationError(true)
}

const (
	exactly = iota
	atLeast
	noMoreThan
	withinRange
)
