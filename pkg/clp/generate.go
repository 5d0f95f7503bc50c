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

// This file converts a field's parsed constraints into pattern network and
// join network expressions.  Constant tests stay in the pattern network
// unless the field has more than one or-alternative and one of them
// references a variable bound in a different pattern, in which case the
// whole field is tested in the join network.  Cross-pattern variable references also emit the hash key
// expressions the evaluator uses for its alpha and beta memories.

// FieldConversion generates the pattern and join network expressions for a
// field constraint, attaching the pattern network test (and, for a hashable
// single literal, the constant selector and value) to the field and the
// join network test and hash keys to the enclosing pattern.
func (e *Environment) FieldConversion(theField, thePattern *LHSParseNode, theNandFrames *NandFrame) {
	if theField == nil {
		e.systemError("ANALYSIS", 3)
	}

	// Constant testing must move to the join network when a field
	// contains an or and references are made to variables outside the
	// pattern.
	testInPatternNetwork := true
	if theField.Bottom != nil && theField.Bottom.Bottom != nil {
		testInPatternNetwork = allVariablesInPattern(theField.Bottom, theField.Pattern)
	}

	// Loop through the or'ed constraints of the field, extracting
	// pattern and join network expressions and adding them to a running
	// list.
	var headOfPNExpression, lastPNExpression *Expression
	var headOfJNExpression, lastJNExpression *Expression

	for patternPtr := theField.Bottom; patternPtr != nil; patternPtr = patternPtr.Bottom {
		patternNetTest, joinNetTest, constantSelector, constantValue :=
			e.extractAnds(patternPtr, testInPatternNetwork, theNandFrames)

		// Constant hashing is only usable when the field has a single
		// un-negated literal alternative.  "red | blue" cannot hash.
		if constantSelector != nil {
			if patternPtr == theField.Bottom && patternPtr.Bottom == nil {
				theField.ConstantSelector = constantSelector
				theField.ConstantValue = constantValue
			} else {
				theField.ConstantSelector = nil
				theField.ConstantValue = nil
			}
		}

		if patternNetTest != nil {
			if lastPNExpression == nil {
				headOfPNExpression = patternNetTest
			} else {
				lastPNExpression.NextArg = patternNetTest
			}
			lastPNExpression = patternNetTest
		}

		if joinNetTest != nil {
			if lastJNExpression == nil {
				headOfJNExpression = joinNetTest
			} else {
				lastJNExpression.NextArg = joinNetTest
			}
			lastJNExpression = joinNetTest
		}
	}

	// More than one expression from the or'ed constraints is enclosed in
	// a single "or" call.
	if headOfPNExpression != nil && headOfPNExpression.NextArg != nil {
		tempExpression := GenConstant(FCall, e.ptrOr)
		tempExpression.ArgList = headOfPNExpression
		headOfPNExpression = tempExpression
	}

	if headOfJNExpression != nil && headOfJNExpression.NextArg != nil {
		tempExpression := GenConstant(FCall, e.ptrOr)
		tempExpression.ArgList = headOfJNExpression
		headOfJNExpression = tempExpression
	}

	// A field binding a variable previously bound elsewhere in the LHS
	// compares this occurrence to the binding occurrence.
	if (theField.Kind == MFVariable || theField.Kind == SFVariable) &&
		theField.ReferringNode != nil {
		if theField.ReferringNode.Pattern == theField.Pattern {
			// Same pattern: the comparison can occur in the pattern
			// network.
			tempExpression := e.genPNVariableComparison(theField, theField.ReferringNode)
			headOfPNExpression = e.CombineExpressions(tempExpression, headOfPNExpression)
		} else if theField.ReferringNode.Pattern > 0 {
			// Different pattern: the comparison must occur in the join
			// network.
			e.AddNandUnification(theField, theNandFrames)

			tempExpression := e.genJNVariableComparison(theField, theField.ReferringNode, false)
			headOfJNExpression = e.CombineExpressions(tempExpression, headOfJNExpression)

			// Generate the hash index.
			if theField.PatternType.GenGetPNValue != nil {
				tempExpression = theField.PatternType.GenGetPNValue(e, theField)
				thePattern.RightHash = AppendExpressions(tempExpression, thePattern.RightHash)
			}
			if theField.ReferringNode.PatternType.GenGetJNValue != nil {
				tempExpression = theField.ReferringNode.PatternType.GenGetJNValue(e, theField.ReferringNode, lhsSide)
				thePattern.LeftHash = AppendExpressions(tempExpression, thePattern.LeftHash)
			}
		}
	}

	theField.NetworkTest = headOfPNExpression
	thePattern.NetworkTest = e.CombineExpressions(thePattern.NetworkTest, headOfJNExpression)
}

// extractAnds loops through a single set of subfields bound together by an
// & connective and generates the expressions needed for testing conditions
// in the pattern and join network.
func (e *Environment) extractAnds(andField *LHSParseNode, testInPatternNetwork bool, theNandFrames *NandFrame) (patternNetTest, joinNetTest, constantSelector, constantValue *Expression) {
	for ; andField != nil; andField = andField.Right {
		newPNTest, newJNTest, newConstantSelector, newConstantValue :=
			e.extractFieldTest(andField, testInPatternNetwork, theNandFrames)

		patternNetTest = e.CombineExpressions(patternNetTest, newPNTest)
		joinNetTest = e.CombineExpressions(joinNetTest, newJNTest)
		constantSelector = e.CombineExpressions(constantSelector, newConstantSelector)
		constantValue = e.CombineExpressions(constantValue, newConstantValue)
	}
	return patternNetTest, joinNetTest, constantSelector, constantValue
}

// extractFieldTest generates the network expression for one basic field
// constraint: a constant, a predicate, a return value, or a variable
// reference.  Constraints referring to variables in other patterns must be
// tested in the join network, which occasionally forces constant tests
// there as well.
func (e *Environment) extractFieldTest(theField *LHSParseNode, testInPatternNetwork bool, theNandFrames *NandFrame) (patternNetTest, joinNetTest, constantSelector, constantValue *Expression) {
	switch theField.Kind {
	case String, Symbol, InstanceName, Float, Integer:
		if testInPatternNetwork {
			patternNetTest = e.genPNConstant(theField)
			if !theField.Negated {
				constantSelector = theField.PatternType.GenGetPNValue(e, theField)
				constantValue = GenConstant(theField.Kind, theField.Value)
			}
		} else {
			joinNetTest = e.genJNConstant(theField, false)
		}

	case PredicateConstraint:
		if testInPatternNetwork &&
			allVariablesInExpression(theField.Expression, theField.Pattern) {
			patternNetTest = e.genPNColon(theField)
		} else {
			joinNetTest = e.genJNColon(theField, false, theNandFrames)
		}

	case ReturnValueConstraint:
		if testInPatternNetwork &&
			allVariablesInExpression(theField.Expression, theField.Pattern) {
			patternNetTest = e.genPNEq(theField)
		} else {
			joinNetTest = e.genJNEq(theField, false, theNandFrames)
		}

	case SFVariable, MFVariable:
		if testInPatternNetwork && theField.ReferringNode != nil &&
			theField.ReferringNode.Pattern == theField.Pattern {
			patternNetTest = e.genPNVariableComparison(theField, theField.ReferringNode)
		} else {
			joinNetTest = e.genJNVariableComparison(theField, theField.ReferringNode, false)
			e.AddNandUnification(theField, theNandFrames)
		}
	}

	return patternNetTest, joinNetTest, constantSelector, constantValue
}

// genPNConstant generates a pattern network expression comparing a
// constant against a field for equality or inequality.
func (e *Environment) genPNConstant(theField *LHSParseNode) *Expression {
	if theField.PatternType.GenPNConstant != nil {
		return theField.PatternType.GenPNConstant(e, theField)
	}

	var top *Expression
	if theField.Negated {
		top = GenConstant(FCall, e.ptrNeq)
	} else {
		top = GenConstant(FCall, e.ptrEq)
	}
	top.ArgList = theField.PatternType.GenGetPNValue(e, theField)
	top.ArgList.NextArg = GenConstant(theField.Kind, theField.Value)
	return top
}

// genJNConstant generates the join network analogue of genPNConstant.
func (e *Environment) genJNConstant(theField *LHSParseNode, isNand bool) *Expression {
	side := rhsSide
	if isNand {
		side = nestedRHSSide
	}

	if theField.PatternType.GenJNConstant != nil {
		return theField.PatternType.GenJNConstant(e, theField, side)
	}

	var top *Expression
	if theField.Negated {
		top = GenConstant(FCall, e.ptrNeq)
	} else {
		top = GenConstant(FCall, e.ptrEq)
	}
	top.ArgList = theField.PatternType.GenGetJNValue(e, theField, side)
	top.ArgList.NextArg = GenConstant(theField.Kind, theField.Value)
	return top
}

// genJNColon generates a join network expression for a predicate (:)
// constraint.
func (e *Environment) genJNColon(theField *LHSParseNode, isNand bool, theNandFrames *NandFrame) *Expression {
	conversion := e.GetvarReplace(theField.Expression, isNand, theNandFrames)

	if theField.Negated {
		top := GenConstant(FCall, e.ptrNot)
		top.ArgList = conversion
		return top
	}
	return conversion
}

// genPNColon generates a pattern network expression for a predicate (:)
// constraint.
func (e *Environment) genPNColon(theField *LHSParseNode) *Expression {
	conversion := e.getfieldReplace(theField.Expression)

	if theField.Negated {
		top := GenConstant(FCall, e.ptrNot)
		top.ArgList = conversion
		return top
	}
	return conversion
}

// genJNEq generates a join network expression for a return value (=)
// constraint.
func (e *Environment) genJNEq(theField *LHSParseNode, isNand bool, theNandFrames *NandFrame) *Expression {
	conversion := e.GetvarReplace(theField.Expression, isNand, theNandFrames)

	var top *Expression
	if theField.Negated {
		top = GenConstant(FCall, e.ptrNeq)
	} else {
		top = GenConstant(FCall, e.ptrEq)
	}
	side := rhsSide
	if isNand {
		side = nestedRHSSide
	}
	top.ArgList = theField.PatternType.GenGetJNValue(e, theField, side)
	top.ArgList.NextArg = conversion
	return top
}

// genPNEq generates a pattern network expression for a return value (=)
// constraint.
func (e *Environment) genPNEq(theField *LHSParseNode) *Expression {
	conversion := e.getfieldReplace(theField.Expression)

	var top *Expression
	if theField.Negated {
		top = GenConstant(FCall, e.ptrNeq)
	} else {
		top = GenConstant(FCall, e.ptrEq)
	}
	top.ArgList = theField.PatternType.GenGetPNValue(e, theField)
	top.ArgList.NextArg = conversion
	return top
}

// AddNandUnification adds expressions to the nand joins to unify the
// variable bindings that must agree between the left and right paths taken
// through the join network for a not/and group.  Every frame enclosing the
// referent receives its own test; a referring node is deliberately not
// deduplicated across frames, since multiple nand groups may reference the
// same binding.
func (e *Environment) AddNandUnification(nodeList *LHSParseNode, theNandFrames *NandFrame) {
	if nodeList.ReferringNode == nil {
		return
	}

	// A reference to a prior variable within the same nand group needs
	// no external network test.
	if nodeList.BeginNandDepth == nodeList.ReferringNode.BeginNandDepth {
		return
	}

	for theFrame := theNandFrames; theFrame != nil; theFrame = theFrame.Next {
		if theFrame.Depth >= nodeList.ReferringNode.BeginNandDepth {
			tempExpression := e.genJNVariableComparison(nodeList.ReferringNode, nodeList.ReferringNode, true)
			theFrame.NandCE.ExternalNetworkTest =
				e.CombineExpressions(theFrame.NandCE.ExternalNetworkTest, tempExpression)

			if nodeList.ReferringNode.PatternType.GenGetJNValue != nil {
				tempExpression = nodeList.ReferringNode.PatternType.GenGetJNValue(e, nodeList.ReferringNode, lhsSide)
				theFrame.NandCE.ExternalRightHash =
					AppendExpressions(theFrame.NandCE.ExternalRightHash, tempExpression)

				tempExpression = nodeList.ReferringNode.PatternType.GenGetJNValue(e, nodeList.ReferringNode, lhsSide)
				theFrame.NandCE.ExternalLeftHash =
					AppendExpressions(theFrame.NandCE.ExternalLeftHash, tempExpression)
			}
		}
	}
}

// GetvarReplace deep-copies an expression, replacing every variable leaf
// with the join network getter appropriate to where its binding occurred:
// same join depth uses the right hand side, a prior join uses the left
// hand side, and inside a nand a reference outside the immediately
// enclosing group uses the left hand side while one inside uses the nested
// right hand side.  Global variables are replaced by their lookup call.
func (e *Environment) GetvarReplace(nodeList *LHSParseNode, isNand bool, theNandFrames *NandFrame) *Expression {
	if nodeList == nil {
		return nil
	}

	newList := GenConstant(nodeList.Kind, nodeList.Value)
	newList.NextArg = e.GetvarReplace(nodeList.Right, isNand, theNandFrames)
	newList.ArgList = e.GetvarReplace(nodeList.Bottom, isNand, theNandFrames)

	switch nodeList.Kind {
	case SFVariable, MFVariable:
		e.AddNandUnification(nodeList, theNandFrames)

		// Referencing a variable outside the scope of the immediately
		// enclosing not/and group requires the test to be performed in
		// the join from the right.
		if isNand {
			if nodeList.BeginNandDepth > nodeList.ReferringNode.BeginNandDepth {
				nodeList.ReferringNode.PatternType.ReplaceGetJNValue(e, newList, nodeList.ReferringNode, lhsSide)
			} else {
				nodeList.ReferringNode.PatternType.ReplaceGetJNValue(e, newList, nodeList.ReferringNode, nestedRHSSide)
			}
		} else {
			if nodeList.JoinDepth != nodeList.ReferringNode.JoinDepth {
				nodeList.ReferringNode.PatternType.ReplaceGetJNValue(e, newList, nodeList.ReferringNode, lhsSide)
			} else {
				nodeList.ReferringNode.PatternType.ReplaceGetJNValue(e, newList, nodeList.ReferringNode, rhsSide)
			}
		}

	case GblVariable:
		e.replaceGlobalVariable(newList)
	}

	return newList
}

// getfieldReplace is the pattern network analogue of GetvarReplace,
// replacing variables with getters over the data entity itself.
func (e *Environment) getfieldReplace(nodeList *LHSParseNode) *Expression {
	if nodeList == nil {
		return nil
	}

	newList := GenConstant(nodeList.Kind, nodeList.Value)
	newList.NextArg = e.getfieldReplace(nodeList.Right)
	newList.ArgList = e.getfieldReplace(nodeList.Bottom)

	switch nodeList.Kind {
	case SFVariable, MFVariable:
		nodeList.ReferringNode.PatternType.ReplaceGetPNValue(e, newList, nodeList.ReferringNode)
	case GblVariable:
		e.replaceGlobalVariable(newList)
	}

	return newList
}

// replaceGlobalVariable rewrites a global variable reference in place into
// its lookup call.
func (e *Environment) replaceGlobalVariable(theItem *Expression) {
	name := theItem.Value
	theItem.Kind = FCall
	theItem.Value = e.ptrGetGlobal
	theItem.ArgList = GenConstant(Symbol, name)
}

// genJNVariableComparison generates a join network test comparing two
// variables found in different patterns.
func (e *Environment) genJNVariableComparison(selfNode, referringNode *LHSParseNode, isNand bool) *Expression {
	// No test is generated when either pattern lacks a compare hook.
	if selfNode.PatternType.GenCompareJNValues == nil ||
		referringNode.PatternType.GenCompareJNValues == nil {
		return nil
	}

	// Patterns of the same type use the specialised comparison.
	if selfNode.PatternType == referringNode.PatternType {
		return selfNode.PatternType.GenCompareJNValues(e, selfNode, referringNode, isNand)
	}

	// Patterns of different types compose eq/neq over the two getters.
	var top *Expression
	if selfNode.Negated {
		top = GenConstant(FCall, e.ptrNeq)
	} else {
		top = GenConstant(FCall, e.ptrEq)
	}
	top.ArgList = selfNode.PatternType.GenGetJNValue(e, selfNode, rhsSide)
	top.ArgList.NextArg = referringNode.PatternType.GenGetJNValue(e, referringNode, lhsSide)
	return top
}

// genPNVariableComparison generates a pattern network test comparing two
// variables found in the same pattern.
func (e *Environment) genPNVariableComparison(selfNode, referringNode *LHSParseNode) *Expression {
	if selfNode.PatternType.GenComparePNValues != nil {
		return selfNode.PatternType.GenComparePNValues(e, selfNode, referringNode)
	}
	return nil
}

// allVariablesInPattern determines whether every variable referenced in a
// field constraint was bound within the given pattern.
func allVariablesInPattern(orField *LHSParseNode, pattern int) bool {
	for ; orField != nil; orField = orField.Bottom {
		for andField := orField; andField != nil; andField = andField.Right {
			switch andField.Kind {
			case SFVariable, MFVariable:
				if andField.ReferringNode.Pattern != pattern {
					return false
				}
			case PredicateConstraint, ReturnValueConstraint:
				if !allVariablesInExpression(andField.Expression, pattern) {
					return false
				}
			}
		}
	}
	return true
}

// allVariablesInExpression determines whether every variable referenced in
// an expression was bound within the given pattern.
func allVariablesInExpression(theExpression *LHSParseNode, pattern int) bool {
	for ; theExpression != nil; theExpression = theExpression.Right {
		switch theExpression.Kind {
		case SFVariable, MFVariable:
			if theExpression.ReferringNode.Pattern != pattern {
				return false
			}
		}
		if !allVariablesInExpression(theExpression.Bottom, pattern) {
			return false
		}
	}
	return true
}
