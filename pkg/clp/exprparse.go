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

// This file parses expressions: function calls, their argument lists, and
// the sequence expansion rewrite applied after a call is parsed.

// A savedContext snapshots the return/break context across nested bodies.
type savedContext struct {
	rtn bool
	brk bool
	nxt *savedContext
}

// PushRtnBrkContexts saves the current return/break context.
func (e *Environment) PushRtnBrkContexts() {
	e.savedContexts = &savedContext{rtn: e.returnContext, brk: e.breakContext, nxt: e.savedContexts}
}

// PopRtnBrkContexts restores the most recently saved return/break context.
func (e *Environment) PopRtnBrkContexts() {
	e.returnContext = e.savedContexts.rtn
	e.breakContext = e.savedContexts.brk
	e.savedContexts = e.savedContexts.nxt
}

// Function0Parse parses a function call where the opening parenthesis has
// not yet been read.  Nil is returned on error.
func (e *Environment) Function0Parse(readSource string) *Expression {
	theToken := e.GetToken(readSource)
	if theToken.Kind != LParen {
		e.syntaxErrorMessage("function calls")
		return nil
	}
	return e.Function1Parse(readSource)
}

// Function1Parse parses a function call where the opening parenthesis has
// already been read.  Nil is returned on error.
func (e *Environment) Function1Parse(readSource string) *Expression {
	theToken := e.GetToken(readSource)
	if theToken.Kind != Symbol {
		e.printErrorID("EXPRNPSR", 1, true)
		e.PrintRouter(WERROR, "A function name must be a symbol.\n")
		return nil
	}
	return e.Function2Parse(readSource, theToken.SymbolValue().Contents)
}

// Function2Parse parses a function call where both the opening parenthesis
// and the function name have been read.
func (e *Environment) Function2Parse(readSource, name string) *Expression {
	theFunction := e.FindFunction(name)
	if theFunction == nil {
		e.printErrorID("EXPRNPSR", 3, true)
		e.PrintRouter(WERROR, "Missing function declaration for "+name+".\n")
		return nil
	}

	top := GenConstant(FCall, theFunction)

	// A function may supply its own argument parser; otherwise the
	// standard comma-free argument collection is used.
	if theFunction.Parser != nil {
		top = theFunction.Parser(e, top, readSource)
		if top == nil {
			return nil
		}
	} else {
		top = e.CollectArguments(top, readSource)
		if top == nil {
			return nil
		}
	}

	if e.ReplaceSequenceExpansionOps(top.ArgList, top) {
		return nil
	}

	if !e.CheckExpressionAgainstRestrictions(top, theFunction, name) {
		return nil
	}

	return top
}

// ReplaceSequenceExpansionOps rewrites multifield variables and expand$
// calls in argument positions.  A function that does not accept them
// directly is wrapped in the (expansion-call) meta function with each
// expanded argument routed through an expand$ shim.  True is returned on
// error.
func (e *Environment) ReplaceSequenceExpansionOps(actions, fcallexp *Expression) bool {
	for ; actions != nil; actions = actions.NextArg {
		if !e.sequenceOpMode && actions.Kind == MFVariable {
			actions.Kind = SFVariable
		}
		if actions.Kind == MFVariable || actions.Kind == MFGblVariable ||
			actions.Value == e.ptrExpMultiply {
			if fcallexp.Kind == FCall && !fcallexp.Value.(*FunctionDefinition).SequenceUseOK {
				e.printErrorID("EXPRNPSR", 4, false)
				e.PrintRouter(WERROR, "$ Sequence operator not a valid argument for "+
					fcallexp.Value.(*FunctionDefinition).Name.Contents+".\n")
				return true
			}
			if fcallexp.Value != e.ptrExpCall {
				theExp := GenConstant(fcallexp.Kind, fcallexp.Value)
				theExp.ArgList = fcallexp.ArgList
				fcallexp.Kind = FCall
				fcallexp.Value = e.ptrExpCall
				fcallexp.ArgList = theExp
			}
			if actions.Value != e.ptrExpMultiply {
				theExp := GenConstant(SFVariable, actions.Value)
				if actions.Kind == MFGblVariable {
					theExp.Kind = GblVariable
				}
				actions.ArgList = theExp
				actions.Kind = FCall
				actions.Value = e.ptrExpMultiply
			}
		}
		if actions.ArgList != nil {
			var theExp *Expression
			if actions.Kind == GCall || actions.Kind == PCall || actions.Kind == FCall {
				theExp = actions
			} else {
				theExp = fcallexp
			}
			if e.ReplaceSequenceExpansionOps(actions.ArgList, theExp) {
				return true
			}
		}
	}
	return false
}

// CollectArguments parses and attaches arguments to top until a right
// parenthesis is read.
func (e *Environment) CollectArguments(top *Expression, readSource string) *Expression {
	var lastOne, nextOne *Expression
	for {
		e.SavePPBuffer(" ")
		var errorFlag bool
		nextOne, errorFlag = e.ArgumentParse(readSource)
		if errorFlag {
			return nil
		}
		if nextOne == nil {
			e.PPBackup()
			return top
		}
		if lastOne == nil {
			top.ArgList = nextOne
		} else {
			lastOne.NextArg = nextOne
		}
		lastOne = nextOne
	}
}

// ArgumentParse parses one argument in a function call.  A nil expression
// with a false error flag indicates the closing right parenthesis was
// read.
func (e *Environment) ArgumentParse(readSource string) (*Expression, bool) {
	theToken := e.GetToken(readSource)

	if theToken.Kind == RParen {
		return nil, false
	}

	if theToken.Kind == LParen {
		top := e.Function1Parse(readSource)
		if top == nil {
			return nil, true
		}
		return top, false
	}

	switch theToken.Kind {
	case SFVariable, MFVariable, GblVariable, MFGblVariable,
		Symbol, String, InstanceName, Float, Integer:
		return GenConstant(theToken.Kind, theToken.Value), false
	}

	e.printErrorID("EXPRNPSR", 2, true)
	e.PrintRouter(WERROR, "Expected a constant, variable, or expression.\n")
	return nil, true
}

// ParseAtomOrExpression parses either a single constant, a variable, or a
// parenthesised expression.
func (e *Environment) ParseAtomOrExpression(readSource string, useToken *Token) *Expression {
	theToken := useToken
	if theToken == nil {
		theToken = e.GetToken(readSource)
	}

	switch theToken.Kind {
	case Symbol, String, InstanceName, Float, Integer,
		SFVariable, MFVariable, GblVariable, MFGblVariable:
		return GenConstant(theToken.Kind, theToken.Value)
	case LParen:
		return e.Function1Parse(readSource)
	}

	e.printErrorID("EXPRNPSR", 2, true)
	e.PrintRouter(WERROR, "Expected a constant, variable, or expression.\n")
	return nil
}

// ParseConstantArguments parses a whitespace separated string of constants
// into a sibling chain.  Nil is returned with an error message if a
// non-constant is found.
func (e *Environment) ParseConstantArguments(argstr string) *Expression {
	const router = "(clp-constant-arguments)"
	if argstr == "" {
		return nil
	}

	e.OpenStringSource(router, argstr)
	defer e.CloseStringSource(router)

	var top, bot *Expression
	theToken := e.GetToken(router)
	for theToken.Kind != Stop {
		if !constantKind(theToken.Kind) {
			e.printErrorID("EXPRNPSR", 7, true)
			e.PrintRouter(WERROR, "Only constant arguments may be specified.\n")
			return nil
		}
		tmp := GenConstant(theToken.Kind, theToken.Value)
		if bot == nil {
			top = tmp
		} else {
			bot.NextArg = tmp
		}
		bot = tmp
		theToken = e.GetToken(router)
	}
	return top
}

// GroupActions parses a sequence of actions into a single progn call.
// Parsing stops at the first token that cannot begin an action, normally
// the closing right parenthesis, or at the symbol endWord when it is
// non-empty.  That token has been read and is returned to the caller.
func (e *Environment) GroupActions(readSource string, endWord string) (*Expression, *Token) {
	top := GenConstant(FCall, e.FindFunction("progn"))

	var lastOne *Expression
	for {
		e.SavePPBuffer(" ")
		theToken := e.GetToken(readSource)

		if theToken.Kind == Symbol && endWord != "" &&
			theToken.SymbolValue().Contents == endWord {
			e.PPBackup()
			return top, theToken
		}

		var nextOne *Expression
		switch theToken.Kind {
		case Symbol, String, InstanceName, Float, Integer,
			SFVariable, MFVariable, GblVariable, MFGblVariable:
			nextOne = GenConstant(theToken.Kind, theToken.Value)
		case LParen:
			nextOne = e.Function1Parse(readSource)
			if nextOne == nil {
				return nil, theToken
			}
		default:
			e.PPBackup()
			return top, theToken
		}

		if lastOne == nil {
			top.ArgList = nextOne
		} else {
			lastOne.NextArg = nextOne
		}
		lastOne = nextOne
	}
}

// RemoveUnneededProgn strips a progn wrapper holding a single argument.
func (e *Environment) RemoveUnneededProgn(top *Expression) *Expression {
	if top == nil || top.Kind != FCall {
		return top
	}
	if top.Value != e.FindFunction("progn") {
		return top
	}
	if top.ArgList != nil && top.ArgList.NextArg == nil {
		tmp := top.ArgList
		tmp.NextArg = top.NextArg
		return tmp
	}
	return top
}

// CheckExpressionAgainstRestrictions compares the arguments of a call to
// the function's declared count range and restriction string.  False is
// returned (with a routed message) when an incompatibility exists.
func (e *Environment) CheckExpressionAgainstRestrictions(theExpression *Expression, theFunction *FunctionDefinition, functionName string) bool {
	count := CountArguments(theExpression.ArgList)

	if theFunction.MinArgs == theFunction.MaxArgs && theFunction.MinArgs >= 0 {
		if count != theFunction.MinArgs {
			e.expectedCountError(functionName, exactly, theFunction.MinArgs)
			return false
		}
	} else {
		if theFunction.MinArgs >= 0 && count < theFunction.MinArgs {
			e.expectedCountError(functionName, atLeast, theFunction.MinArgs)
			return false
		}
		if theFunction.MaxArgs != Unbounded && count > theFunction.MaxArgs {
			e.expectedCountError(functionName, noMoreThan, theFunction.MaxArgs)
			return false
		}
	}

	if theFunction.Restrictions == "" {
		return true
	}

	defaultRestriction := e.populateRestriction(AnyBits, theFunction.Restrictions, len(theFunction.Restrictions))
	position := 0
	for argPtr := theExpression.ArgList; argPtr != nil; argPtr = argPtr.NextArg {
		restriction := defaultRestriction
		if restrictionExists(theFunction.Restrictions, position) {
			restriction = e.populateRestriction(defaultRestriction, theFunction.Restrictions, position)
		}
		if constantKind(argPtr.Kind) && restriction&kindTypeBit(argPtr.Kind) == 0 {
			e.expectedTypeError(functionName, position+1, restrictionName(restriction))
			return false
		}
		position++
	}

	return true
}

// restrictionName renders a type mask for diagnostics.
func restrictionName(restriction uint) string {
	switch restriction {
	case IntegerBits:
		return "integer"
	case FloatBits:
		return "float"
	case NumberBits:
		return "integer or float"
	case SymbolBits:
		return "symbol"
	case StringBits:
		return "string"
	case LexemeBits:
		return "symbol or string"
	case InstanceNameBits:
		return "instance name"
	case MultifieldBits:
		return "multifield"
	}
	return "the appropriate type"
}
