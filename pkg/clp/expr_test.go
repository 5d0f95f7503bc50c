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
	"testing"
)

func TestCopyExpression(t *testing.T) {
	e := NewEnvironment()
	orig := GenConstant(FCall, e.ptrEq)
	orig.ArgList = GenConstant(Symbol, e.AddSymbol("a"))
	orig.ArgList.NextArg = GenConstant(Integer, e.AddLong(1))

	dup := CopyExpression(orig)
	if dup == orig || dup.ArgList == orig.ArgList {
		t.Fatal("copy shares structure with the original")
	}
	if !identicalExpression(orig, dup) {
		t.Errorf("copy differs from the original")
	}
}

func TestAppendExpressions(t *testing.T) {
	e := NewEnvironment()
	a := GenConstant(Symbol, e.AddSymbol("a"))
	b := GenConstant(Symbol, e.AddSymbol("b"))
	c := GenConstant(Symbol, e.AddSymbol("c"))

	head := AppendExpressions(a, b)
	head = AppendExpressions(head, c)
	if head != a || a.NextArg != b || b.NextArg != c {
		t.Errorf("append built the wrong chain")
	}
	if got := AppendExpressions(nil, c); got != c {
		t.Errorf("append of nil head got %v, want the second chain", got)
	}
}

func TestCombineExpressions(t *testing.T) {
	e := NewEnvironment()

	// Either side nil returns the other.
	a := GenConstant(Symbol, e.AddSymbol("a"))
	if got := e.CombineExpressions(nil, a); got != a {
		t.Errorf("combine(nil, a) = %v, want a", got)
	}
	if got := e.CombineExpressions(a, nil); got != a {
		t.Errorf("combine(a, nil) = %v, want a", got)
	}

	// Two plain tests wrap in an "and" call.
	b := GenConstant(Symbol, e.AddSymbol("b"))
	top := e.CombineExpressions(a, b)
	if top.Kind != FCall || top.Value != e.ptrAnd {
		t.Fatalf("combine produced %v, want an and call", top.Kind)
	}
	if top.ArgList != a || a.NextArg != b {
		t.Errorf("combine arguments are wrong")
	}

	// Combining onto an existing "and" extends its argument list.
	c := GenConstant(Symbol, e.AddSymbol("c"))
	top = e.CombineExpressions(top, c)
	if top.Kind != FCall || top.Value != e.ptrAnd {
		t.Fatalf("recombine produced %v, want the same and call", top.Kind)
	}
	if CountArguments(top.ArgList) != 3 {
		t.Errorf("got %d and arguments, want 3", CountArguments(top.ArgList))
	}
}

// Installing then deinstalling an expression is a no-op on every atom's
// reference count.
func TestInstallDeinstall(t *testing.T) {
	e := NewEnvironment()
	sym := e.AddSymbol("slot-value")
	num := e.AddLong(7)

	expr := GenConstant(FCall, e.ptrEq)
	expr.ArgList = GenConstant(Symbol, sym)
	expr.ArgList.NextArg = GenConstant(Integer, num)

	symBefore, numBefore := sym.count, num.count
	e.ExpressionInstall(expr)
	if sym.count != symBefore+1 || num.count != numBefore+1 {
		t.Fatalf("install did not add one reference per atom")
	}
	e.ExpressionDeinstall(expr)
	if sym.count != symBefore || num.count != numBefore {
		t.Errorf("install/deinstall was not a no-op on counts")
	}
}

func TestExpressionContainsVariables(t *testing.T) {
	e := NewEnvironment()

	call := GenConstant(FCall, e.ptrEq)
	call.ArgList = GenConstant(Integer, e.AddLong(1))
	call.ArgList.NextArg = GenConstant(Integer, e.AddLong(2))
	if ExpressionContainsVariables(call, false) {
		t.Errorf("constant call reported variables")
	}

	call.ArgList.NextArg = GenConstant(SFVariable, e.AddSymbol("x"))
	if !ExpressionContainsVariables(call, false) {
		t.Errorf("variable argument not reported")
	}

	gbl := GenConstant(GblVariable, e.AddSymbol("limit"))
	if ExpressionContainsVariables(gbl, false) {
		t.Errorf("global counted without includeGlobals")
	}
	if !ExpressionContainsVariables(gbl, true) {
		t.Errorf("global not counted with includeGlobals")
	}
}

func TestExpressionSize(t *testing.T) {
	e := NewEnvironment()
	call := GenConstant(FCall, e.ptrEq)
	call.ArgList = GenConstant(Integer, e.AddLong(1))
	call.ArgList.NextArg = GenConstant(Integer, e.AddLong(2))
	if got := ExpressionSize(call); got != 3 {
		t.Errorf("got size %d, want 3", got)
	}
}
