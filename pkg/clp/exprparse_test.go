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

import (
	"bytes"
	"strings"
	"testing"
)

// parseExpression parses src as a single function call, returning the
// expression (nil on error) and the error output.
func parseExpression(t *testing.T, e *Environment, src string) (*Expression, string) {
	t.Helper()
	const router = "expr-test"

	errbuf := &bytes.Buffer{}
	e.SetErrorWriter(errbuf)
	e.OpenStringSource(router, src)
	defer e.CloseStringSource(router)

	return e.Function0Parse(router), errbuf.String()
}

func TestFunction0Parse(t *testing.T) {
	e := NewEnvironment()
	top, errout := parseExpression(t, e, "(eq 1 2)")
	if top == nil {
		t.Fatalf("parse failed: %s", errout)
	}
	if top.Kind != FCall || top.Value != e.ptrEq {
		t.Fatalf("got %v, want an eq call", top.Kind)
	}
	if CountArguments(top.ArgList) != 2 {
		t.Errorf("got %d arguments, want 2", CountArguments(top.ArgList))
	}

	// Nested calls become child call nodes.
	top, errout = parseExpression(t, e, "(eq (not TRUE) FALSE)")
	if top == nil {
		t.Fatalf("parse failed: %s", errout)
	}
	if top.ArgList.Kind != FCall || top.ArgList.Value != e.ptrNot {
		t.Errorf("nested call not parsed as a call node")
	}
}

func TestFunctionParseErrors(t *testing.T) {
	for _, tt := range []struct {
		line          int
		in            string
		wantErrSubstr string
	}{
		{line(), "(no-such-function 1)", "Missing function declaration"},
		{line(), "eq 1 2", "function calls"},
		{line(), "(1 2)", "function name must be a symbol"},
		{line(), "(not)", "expected exactly 1 argument"},
		{line(), "(and TRUE)", "expected at least 2 argument"},
	} {
		e := NewEnvironment()
		top, errout := parseExpression(t, e, tt.in)
		if top != nil {
			t.Errorf("%d: parse succeeded, want failure", tt.line)
			continue
		}
		if !strings.Contains(errout, tt.wantErrSubstr) {
			t.Errorf("%d: got error output %q, want substring %q", tt.line, errout, tt.wantErrSubstr)
		}
	}
}

func TestArgumentRestrictions(t *testing.T) {
	e := NewEnvironment()
	e.DefineFunction("pair", BooleanBits, 2, 2, "l;y")

	if top, errout := parseExpression(t, e, "(pair 1 red)"); top == nil {
		t.Fatalf("conforming call rejected: %s", errout)
	}

	top, errout := parseExpression(t, e, "(pair red 1)")
	if top != nil {
		t.Fatal("non-conforming call accepted")
	}
	if !strings.Contains(errout, "argument #1") {
		t.Errorf("got error output %q, want a position diagnostic", errout)
	}

	// The slot after the last ';' applies to all remaining positions.
	e.DefineFunction("tail", BooleanBits, 1, Unbounded, "l;y")
	if top, errout = parseExpression(t, e, "(tail 1 red blue green)"); top == nil {
		t.Fatalf("trailing symbol arguments rejected: %s", errout)
	}
	if top, _ = parseExpression(t, e, "(tail 1 red 2)"); top != nil {
		t.Fatal("trailing integer argument accepted against a symbol slot")
	}
}

func TestRestrictionExists(t *testing.T) {
	for _, tt := range []struct {
		line     int
		str      string
		position int
		want     bool
	}{
		{line(), "l;y", 0, true},
		{line(), "l;y", 1, false},
		{line(), "l;d;y", 1, true},
		{line(), "", 0, false},
		{line(), "l", 0, false},
	} {
		if got := restrictionExists(tt.str, tt.position); got != tt.want {
			t.Errorf("%d: restrictionExists(%q, %d) = %v, want %v",
				tt.line, tt.str, tt.position, got, tt.want)
		}
	}
}

func TestPopulateRestriction(t *testing.T) {
	e := NewEnvironment()
	for _, tt := range []struct {
		line     int
		str      string
		position int
		want     uint
	}{
		{line(), "l;y", 0, IntegerBits},
		{line(), "ld;y", 0, IntegerBits | FloatBits},
		{line(), "l;y", 1, SymbolBits},
		{line(), "*", 0, AnyBits},
		{line(), "ly;*", 1, AnyBits},
		{line(), "m", 0, MultifieldBits},
	} {
		if got := e.populateRestriction(AnyBits, tt.str, tt.position); got != tt.want {
			t.Errorf("%d: populateRestriction(%q, %d) = %b, want %b",
				tt.line, tt.str, tt.position, got, tt.want)
		}
	}
}

func TestSequenceExpansion(t *testing.T) {
	e := NewEnvironment()
	e.SetSequenceOperatorRecognition(true)
	create := e.DefineFunction("create$", MultifieldBits, 0, Unbounded, "")

	top, errout := parseExpression(t, e, "(create$ a $?rest b)")
	if top == nil {
		t.Fatalf("parse failed: %s", errout)
	}

	// The call is rewritten to (expansion-call (create$ a (expand$ ?rest) b)).
	if top.Value != e.ptrExpCall {
		t.Fatalf("call not rewritten to the expansion meta function")
	}
	inner := top.ArgList
	if inner.Kind != FCall || inner.Value != create {
		t.Fatalf("inner call is not the original function")
	}
	arg := inner.ArgList.NextArg
	if arg.Kind != FCall || arg.Value != e.ptrExpMultiply {
		t.Fatalf("multifield variable not wrapped in expand$")
	}
	if arg.ArgList.Kind != SFVariable {
		t.Errorf("expand$ argument is not a single field variable reference")
	}
}

func TestSequenceExpansionDisabled(t *testing.T) {
	e := NewEnvironment()
	e.DefineFunction("create$", MultifieldBits, 0, Unbounded, "")

	// Without sequence operator recognition a multifield variable is
	// read as a single field variable.
	top, errout := parseExpression(t, e, "(create$ $?rest)")
	if top == nil {
		t.Fatalf("parse failed: %s", errout)
	}
	if top.Value != e.FindFunction("create$") {
		t.Fatalf("call was rewritten with sequence recognition off")
	}
	if top.ArgList.Kind != SFVariable {
		t.Errorf("got %v, want the variable demoted to single field", top.ArgList.Kind)
	}
}

func TestSequenceExpansionRejected(t *testing.T) {
	e := NewEnvironment()
	e.SetSequenceOperatorRecognition(true)
	noSeq := e.DefineFunction("solo", BooleanBits, 1, 1, "")
	noSeq.SequenceUseOK = false

	top, errout := parseExpression(t, e, "(solo $?rest)")
	if top != nil {
		t.Fatal("sequence argument accepted by a function that rejects them")
	}
	if !strings.Contains(errout, "Sequence operator not a valid argument for solo") {
		t.Errorf("got error output %q, want a sequence operator diagnostic", errout)
	}
}

func TestParseConstantArguments(t *testing.T) {
	e := NewEnvironment()

	top := e.ParseConstantArguments(`red 1 2.5 "hi"`)
	if CountArguments(top) != 4 {
		t.Fatalf("got %d constants, want 4", CountArguments(top))
	}
	if top.Kind != Symbol || top.NextArg.Kind != Integer {
		t.Errorf("constants have the wrong kinds")
	}

	errbuf := &bytes.Buffer{}
	e.SetErrorWriter(errbuf)
	if got := e.ParseConstantArguments("red ?x"); got != nil {
		t.Fatal("variable accepted as a constant argument")
	}
	if !strings.Contains(errbuf.String(), "Only constant arguments") {
		t.Errorf("got error output %q, want a constant-only diagnostic", errbuf.String())
	}
}

func TestGroupActions(t *testing.T) {
	e := NewEnvironment()
	const router = "group-test"
	e.OpenStringSource(router, "(not TRUE) (eq 1 1))")
	defer e.CloseStringSource(router)

	top, _ := e.GroupActions(router, "")
	if top == nil || top.Value != e.FindFunction("progn") {
		t.Fatal("actions not grouped under progn")
	}
	if CountArguments(top.ArgList) != 2 {
		t.Errorf("got %d grouped actions, want 2", CountArguments(top.ArgList))
	}
}

func TestRemoveUnneededProgn(t *testing.T) {
	e := NewEnvironment()
	progn := e.FindFunction("progn")

	single := GenConstant(FCall, progn)
	single.ArgList = GenConstant(Integer, e.AddLong(1))
	if got := e.RemoveUnneededProgn(single); got.Kind != Integer {
		t.Errorf("single argument progn not unwrapped")
	}

	double := GenConstant(FCall, progn)
	double.ArgList = GenConstant(Integer, e.AddLong(1))
	double.ArgList.NextArg = GenConstant(Integer, e.AddLong(2))
	if got := e.RemoveUnneededProgn(double); got != double {
		t.Errorf("multi argument progn unwrapped")
	}
}

func TestPushPopRtnBrkContexts(t *testing.T) {
	e := NewEnvironment()
	e.returnContext = true
	e.PushRtnBrkContexts()
	e.returnContext = false
	e.breakContext = true
	e.PopRtnBrkContexts()
	if !e.returnContext || e.breakContext {
		t.Errorf("contexts not restored")
	}
}
