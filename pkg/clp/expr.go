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

// This file defines the expression tree: the single node type shared by
// parsed user code, constraint bodies, right hand side actions, and
// generated network tests.  ArgList is the first child and NextArg the
// next sibling, so a call's arguments form a sibling chain under the call
// node.

// An Expression is one node of an expression tree.  Value is interpreted
// according to Kind: an interned atom for constants and variables, a
// *FunctionDefinition for FCall nodes, or construct specific handles for
// GCall/PCall/DeftemplatePtr nodes.
type Expression struct {
	Kind    Kind
	Value   interface{}
	ArgList *Expression
	NextArg *Expression
}

// GenConstant returns a new expression node of the given kind and value.
func GenConstant(kind Kind, value interface{}) *Expression {
	return &Expression{Kind: kind, Value: value}
}

// CopyExpression returns a deep copy of original.  Persistent expressions
// must never share structure; copy before reuse.
func CopyExpression(original *Expression) *Expression {
	if original == nil {
		return nil
	}
	top := GenConstant(original.Kind, original.Value)
	top.ArgList = CopyExpression(original.ArgList)
	top.NextArg = CopyExpression(original.NextArg)
	return top
}

// AppendExpressions concatenates the sibling chains a and b, returning the
// head of the combined chain.
func AppendExpressions(a, b *Expression) *Expression {
	if a == nil {
		return b
	}
	last := a
	for last.NextArg != nil {
		last = last.NextArg
	}
	last.NextArg = b
	return a
}

// CombineExpressions combines two tests into one.  If either is nil the
// other is returned.  If the first is already an "and" call, the second is
// appended to its arguments (merging two "and" chains when both are).  If
// only the second is an "and" call, the first is prepended to its
// arguments.  Otherwise both are wrapped in a new "and" call.
func (e *Environment) CombineExpressions(expr1, expr2 *Expression) *Expression {
	if expr1 == nil {
		return expr2
	}
	if expr2 == nil {
		return expr1
	}

	if expr1.Kind == FCall && expr1.Value == e.ptrAnd {
		if expr2.Kind == FCall && expr2.Value == e.ptrAnd {
			AppendExpressions(expr1.ArgList, expr2.ArgList)
			return expr1
		}
		AppendExpressions(expr1.ArgList, expr2)
		return expr1
	}

	if expr2.Kind == FCall && expr2.Value == e.ptrAnd {
		expr1.NextArg = expr2.ArgList
		expr2.ArgList = expr1
		return expr2
	}

	top := GenConstant(FCall, e.ptrAnd)
	top.ArgList = expr1
	expr1.NextArg = expr2
	return top
}

// ExpressionSize returns the number of nodes in the tree rooted at expr,
// including siblings.
func ExpressionSize(expr *Expression) int {
	size := 0
	for ; expr != nil; expr = expr.NextArg {
		size += 1 + ExpressionSize(expr.ArgList)
	}
	return size
}

// ExpressionInstall walks expr recursively, adding a persistent reference
// to every interned atom it mentions.  Installation must be paired one to
// one with ExpressionDeinstall.
func (e *Environment) ExpressionInstall(expr *Expression) {
	for ; expr != nil; expr = expr.NextArg {
		e.incrementAtomCount(expr.Kind, expr.Value)
		e.ExpressionInstall(expr.ArgList)
	}
}

// ExpressionDeinstall removes the references added by ExpressionInstall.
func (e *Environment) ExpressionDeinstall(expr *Expression) {
	for ; expr != nil; expr = expr.NextArg {
		e.decrementAtomCount(expr.Kind, expr.Value)
		e.ExpressionDeinstall(expr.ArgList)
	}
}

// ExpressionContainsVariables reports whether expr mentions a local
// variable, a wildcard, or a bind.  Global variable references count only
// when includeGlobals is set.
func ExpressionContainsVariables(expr *Expression, includeGlobals bool) bool {
	for ; expr != nil; expr = expr.NextArg {
		switch expr.Kind {
		case SFVariable, MFVariable, SFWildcard, MFWildcard, Bind:
			return true
		case GblVariable, MFGblVariable:
			if includeGlobals {
				return true
			}
		}
		if ExpressionContainsVariables(expr.ArgList, includeGlobals) {
			return true
		}
	}
	return false
}

// CountArguments returns the length of the sibling chain headed by expr.
func CountArguments(expr *Expression) int {
	count := 0
	for ; expr != nil; expr = expr.NextArg {
		count++
	}
	return count
}

// constantKind reports whether kind is one of the primitive constant
// kinds.
func constantKind(kind Kind) bool {
	switch kind {
	case Symbol, String, Integer, Float, InstanceName, InstanceAddress,
		FactAddress, ExternalAddress:
		return true
	}
	return false
}

// identicalExpression reports whether two trees have the same shape with
// identical kinds and values at every node.
func identicalExpression(a, b *Expression) bool {
	for ; a != nil && b != nil; a, b = a.NextArg, b.NextArg {
		if a.Kind != b.Kind || a.Value != b.Value {
			return false
		}
		if !identicalExpression(a.ArgList, b.ArgList) {
			return false
		}
	}
	return a == nil && b == nil
}
