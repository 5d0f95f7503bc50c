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

// This file parses the standard constraint facets (type, range,
// cardinality, and the allowed-... family) and implements the overlay of
// inherited facets onto a record.

// A ConstraintParseRecord tracks which facets the user wrote explicitly.
// It drives both duplicate-facet diagnostics and overlay semantics: only
// facets the user did not set are inherited.
type ConstraintParseRecord struct {
	Type                 bool
	Range                bool
	AllowedSymbols       bool
	AllowedStrings       bool
	AllowedLexemes       bool
	AllowedIntegers      bool
	AllowedFloats        bool
	AllowedNumbers       bool
	AllowedValues        bool
	AllowedInstanceNames bool
	AllowedClasses       bool
	Cardinality          bool
}

// StandardConstraint reports whether name is one of the facets parsed by
// ParseStandardConstraint.
func StandardConstraint(constraintName string) bool {
	switch constraintName {
	case "type", "range", "cardinality",
		"allowed-symbols", "allowed-strings", "allowed-lexemes",
		"allowed-integers", "allowed-floats", "allowed-numbers",
		"allowed-instance-names", "allowed-classes", "allowed-values":
		return true
	}
	return false
}

// ParseStandardConstraint consumes the body of the named facet (the
// opening parenthesis and facet name have been read), updating constraints
// and parsedConstraints.  multipleValuesAllowed enables the cardinality
// facet.  False is returned after a routed diagnostic on any error.
func (e *Environment) ParseStandardConstraint(readSource, constraintName string, constraints *ConstraintRecord, parsedConstraints *ConstraintParseRecord, multipleValuesAllowed bool) bool {
	rv := false

	if getAttributeParseValue(constraintName, parsedConstraints) {
		e.alreadyParsedErrorMessage(constraintName, " attribute")
		return false
	}

	switch constraintName {
	case "range", "cardinality":
		rv = e.parseRangeCardinalityAttribute(readSource, constraints, parsedConstraints,
			constraintName, multipleValuesAllowed)
	case "type":
		rv = e.parseTypeAttribute(readSource, constraints)
	default:
		rv = e.parseAllowedValuesAttribute(readSource, constraintName,
			constraints, parsedConstraints)
	}

	setParseFlag(parsedConstraints, constraintName)
	return rv
}

// OverlayConstraint propagates facets the user did not explicitly set on
// the destination from the source record.  The allowed-values facet
// combines: if no allowed-... facet at all was set, the full restriction
// set is inherited; otherwise each type whose specific facet was not set
// and whose restriction is active on the source is merged in.
func (e *Environment) OverlayConstraint(pc *ConstraintParseRecord, cdst, csrc *ConstraintRecord) {
	if !pc.Type {
		cdst.AnyAllowed = csrc.AnyAllowed
		cdst.SymbolsAllowed = csrc.SymbolsAllowed
		cdst.StringsAllowed = csrc.StringsAllowed
		cdst.FloatsAllowed = csrc.FloatsAllowed
		cdst.IntegersAllowed = csrc.IntegersAllowed
		cdst.InstanceNamesAllowed = csrc.InstanceNamesAllowed
		cdst.InstanceAddressesAllowed = csrc.InstanceAddressesAllowed
		cdst.ExternalAddressesAllowed = csrc.ExternalAddressesAllowed
		cdst.VoidAllowed = csrc.VoidAllowed
		cdst.FactAddressesAllowed = csrc.FactAddressesAllowed
	}

	if !pc.Range {
		cdst.MinValue = CopyExpression(csrc.MinValue)
		cdst.MaxValue = CopyExpression(csrc.MaxValue)
	}

	if !pc.AllowedClasses {
		cdst.ClassList = CopyExpression(csrc.ClassList)
	}

	if !pc.AllowedValues {
		if !pc.AllowedSymbols && !pc.AllowedStrings && !pc.AllowedLexemes &&
			!pc.AllowedIntegers && !pc.AllowedFloats && !pc.AllowedNumbers &&
			!pc.AllowedInstanceNames {
			cdst.AnyRestriction = csrc.AnyRestriction
			cdst.SymbolRestriction = csrc.SymbolRestriction
			cdst.StringRestriction = csrc.StringRestriction
			cdst.FloatRestriction = csrc.FloatRestriction
			cdst.IntegerRestriction = csrc.IntegerRestriction
			cdst.ClassRestriction = csrc.ClassRestriction
			cdst.InstanceNameRestriction = csrc.InstanceNameRestriction
			cdst.RestrictionList = CopyExpression(csrc.RestrictionList)
		} else {
			if !pc.AllowedSymbols && csrc.SymbolRestriction {
				cdst.SymbolRestriction = true
				addToRestrictionList(Symbol, cdst, csrc)
			}
			if !pc.AllowedStrings && csrc.StringRestriction {
				cdst.StringRestriction = true
				addToRestrictionList(String, cdst, csrc)
			}
			if !pc.AllowedLexemes && csrc.SymbolRestriction && csrc.StringRestriction {
				cdst.SymbolRestriction = true
				cdst.StringRestriction = true
				addToRestrictionList(Symbol, cdst, csrc)
				addToRestrictionList(String, cdst, csrc)
			}
			if !pc.AllowedIntegers && csrc.IntegerRestriction {
				cdst.IntegerRestriction = true
				addToRestrictionList(Integer, cdst, csrc)
			}
			if !pc.AllowedFloats && csrc.FloatRestriction {
				cdst.FloatRestriction = true
				addToRestrictionList(Float, cdst, csrc)
			}
			if !pc.AllowedNumbers && csrc.IntegerRestriction && csrc.FloatRestriction {
				cdst.IntegerRestriction = true
				cdst.FloatRestriction = true
				addToRestrictionList(Integer, cdst, csrc)
				addToRestrictionList(Float, cdst, csrc)
			}
			if !pc.AllowedInstanceNames && csrc.InstanceNameRestriction {
				cdst.InstanceNameRestriction = true
				addToRestrictionList(InstanceName, cdst, csrc)
			}
		}
	}

	if !pc.Cardinality {
		cdst.MinFields = CopyExpression(csrc.MinFields)
		cdst.MaxFields = CopyExpression(csrc.MaxFields)
	}
}

// OverlayConstraintParseRecord performs a field-wise or of the source
// parse record into the destination.
func OverlayConstraintParseRecord(dst, src *ConstraintParseRecord) {
	if src.Type {
		dst.Type = true
	}
	if src.Range {
		dst.Range = true
	}
	if src.AllowedSymbols {
		dst.AllowedSymbols = true
	}
	if src.AllowedStrings {
		dst.AllowedStrings = true
	}
	if src.AllowedLexemes {
		dst.AllowedLexemes = true
	}
	if src.AllowedIntegers {
		dst.AllowedIntegers = true
	}
	if src.AllowedFloats {
		dst.AllowedFloats = true
	}
	if src.AllowedNumbers {
		dst.AllowedNumbers = true
	}
	if src.AllowedValues {
		dst.AllowedValues = true
	}
	if src.AllowedInstanceNames {
		dst.AllowedInstanceNames = true
	}
	if src.AllowedClasses {
		dst.AllowedClasses = true
	}
	if src.Cardinality {
		dst.Cardinality = true
	}
}

// addToRestrictionList prepends atoms of the given kind from the source
// restriction list onto the destination's.
func addToRestrictionList(kind Kind, cdst, csrc *ConstraintRecord) {
	for exp := csrc.RestrictionList; exp != nil; exp = exp.NextArg {
		if exp.Kind == kind {
			tmp := GenConstant(exp.Kind, exp.Value)
			tmp.NextArg = cdst.RestrictionList
			cdst.RestrictionList = tmp
		}
	}
}

// parseAllowedValuesAttribute parses the allowed-... facets.
func (e *Environment) parseAllowedValuesAttribute(readSource, constraintName string, constraints *ConstraintRecord, parsedConstraints *ConstraintParseRecord) bool {
	// The allowed-values facet is not usable once a specific allowed-...
	// facet has been parsed, and vice versa.
	if constraintName == "allowed-values" {
		var tempPtr string
		switch {
		case parsedConstraints.AllowedSymbols:
			tempPtr = "allowed-symbols"
		case parsedConstraints.AllowedStrings:
			tempPtr = "allowed-strings"
		case parsedConstraints.AllowedLexemes:
			tempPtr = "allowed-lexemes"
		case parsedConstraints.AllowedIntegers:
			tempPtr = "allowed-integers"
		case parsedConstraints.AllowedFloats:
			tempPtr = "allowed-floats"
		case parsedConstraints.AllowedNumbers:
			tempPtr = "allowed-numbers"
		case parsedConstraints.AllowedInstanceNames:
			tempPtr = "allowed-instance-names"
		}
		if tempPtr != "" {
			e.noConjunctiveUseError("allowed-values", tempPtr)
			return false
		}
	}

	// The value facets are incompatible with range.
	switch constraintName {
	case "allowed-values", "allowed-numbers", "allowed-integers", "allowed-floats":
		if parsedConstraints.Range {
			e.noConjunctiveUseError(constraintName, "range")
			return false
		}
	}

	if constraintName != "allowed-values" && parsedConstraints.AllowedValues {
		e.noConjunctiveUseError(constraintName, "allowed-values")
		return false
	}

	if constraintName == "allowed-numbers" &&
		(parsedConstraints.AllowedFloats || parsedConstraints.AllowedIntegers) {
		tempPtr := "allowed-integers"
		if parsedConstraints.AllowedFloats {
			tempPtr = "allowed-floats"
		}
		e.noConjunctiveUseError("allowed-numbers", tempPtr)
		return false
	}

	if (constraintName == "allowed-integers" || constraintName == "allowed-floats") &&
		parsedConstraints.AllowedNumbers {
		e.noConjunctiveUseError(constraintName, "allowed-numbers")
		return false
	}

	if constraintName == "allowed-lexemes" &&
		(parsedConstraints.AllowedSymbols || parsedConstraints.AllowedStrings) {
		tempPtr := "allowed-strings"
		if parsedConstraints.AllowedSymbols {
			tempPtr = "allowed-symbols"
		}
		e.noConjunctiveUseError("allowed-lexemes", tempPtr)
		return false
	}

	if (constraintName == "allowed-symbols" || constraintName == "allowed-strings") &&
		parsedConstraints.AllowedLexemes {
		e.noConjunctiveUseError(constraintName, "allowed-lexemes")
		return false
	}

	restrictionType := getConstraintTypeFromAllowedName(constraintName)
	setRestrictionFlag(restrictionType, constraints, true)
	expectedType := restrictionType
	if constraintName == "allowed-classes" {
		expectedType = int(Symbol)
	}

	// Find the tail of the list the allowed values are appended to.
	lastValue := constraints.RestrictionList
	if constraintName == "allowed-classes" {
		lastValue = constraints.ClassList
	}
	if lastValue != nil {
		for lastValue.NextArg != nil {
			lastValue = lastValue.NextArg
		}
	}

	constantParsed, variableParsed := false, false

	e.SavePPBuffer(" ")
	inputToken := e.GetToken(readSource)
	for inputToken.Kind != RParen {
		e.SavePPBuffer(" ")

		errorFlag := false
		switch inputToken.Kind {
		case Integer:
			if expectedType != typeUnknown && expectedType != int(Integer) &&
				expectedType != typeIntegerOrFloat {
				errorFlag = true
			}
			constantParsed = true
		case Float:
			if expectedType != typeUnknown && expectedType != int(Float) &&
				expectedType != typeIntegerOrFloat {
				errorFlag = true
			}
			constantParsed = true
		case String:
			if expectedType != typeUnknown && expectedType != int(String) &&
				expectedType != typeSymbolOrString {
				errorFlag = true
			}
			constantParsed = true
		case Symbol:
			if expectedType != typeUnknown && expectedType != int(Symbol) &&
				expectedType != typeSymbolOrString {
				errorFlag = true
			}
			constantParsed = true
		case InstanceName:
			if expectedType != typeUnknown && expectedType != int(InstanceName) {
				errorFlag = true
			}
			constantParsed = true
		case SFVariable:
			if inputToken.PrintForm != "?VARIABLE" {
				e.syntaxErrorMessage(constraintName + " attribute")
				return false
			}
			variableParsed = true
		default:
			e.syntaxErrorMessage(constraintName + " attribute")
			return false
		}

		if errorFlag {
			e.printErrorID("CSTRNPSR", 4, true)
			e.PrintRouter(WERROR, "Value does not match the expected type for the "+
				constraintName+" attribute\n")
			return false
		}

		// ?VARIABLE cannot be mixed with constants.
		if constantParsed && variableParsed {
			e.syntaxErrorMessage(constraintName + " attribute")
			return false
		}

		if inputToken.Kind != SFVariable {
			newValue := GenConstant(inputToken.Kind, inputToken.Value)
			if lastValue == nil {
				if constraintName == "allowed-classes" {
					constraints.ClassList = newValue
				} else {
					constraints.RestrictionList = newValue
				}
			} else {
				lastValue.NextArg = newValue
			}
			lastValue = newValue
		}

		inputToken = e.GetToken(readSource)
	}

	if !constantParsed && !variableParsed {
		e.syntaxErrorMessage(constraintName + " attribute")
		return false
	}

	// ?VARIABLE reopens the restriction: the allowed set becomes any
	// constant of the admitted type.
	if variableParsed {
		setRestrictionFlag(restrictionType, constraints, false)
	}

	e.PPBackup()
	e.PPBackup()
	e.SavePPBuffer(")")

	return true
}

// noConjunctiveUseError routes the diagnostic for two facets that cannot
// be used together.
func (e *Environment) noConjunctiveUseError(attribute1, attribute2 string) {
	e.printErrorID("CSTRNPSR", 3, true)
	e.PrintRouter(WERROR, "The "+attribute1+" attribute cannot be used\n"+
		"in conjunction with the "+attribute2+" attribute.\n")
}

// parseTypeAttribute parses the type facet.
func (e *Environment) parseTypeAttribute(readSource string, constraints *ConstraintRecord) bool {
	typeParsed, variableParsed := false, false

	e.SavePPBuffer(" ")
	for inputToken := e.GetToken(readSource); inputToken.Kind != RParen; inputToken = e.GetToken(readSource) {
		e.SavePPBuffer(" ")

		switch inputToken.Kind {
		case Symbol:
			if variableParsed {
				e.syntaxErrorMessage("type attribute")
				return false
			}
			theType := getConstraintTypeFromTypeName(inputToken.SymbolValue().Contents)
			if theType < 0 {
				e.syntaxErrorMessage("type attribute")
				return false
			}
			if constraints.SetConstraintType(theType) {
				e.syntaxErrorMessage("type attribute")
				return false
			}
			constraints.AnyAllowed = false
			typeParsed = true

		case SFVariable:
			if inputToken.PrintForm != "?VARIABLE" {
				e.syntaxErrorMessage("type attribute")
				return false
			}
			if typeParsed || variableParsed {
				e.syntaxErrorMessage("type attribute")
				return false
			}
			variableParsed = true

		default:
			e.syntaxErrorMessage("type attribute")
			return false
		}
	}

	e.PPBackup()
	e.PPBackup()
	e.SavePPBuffer(")")

	if !typeParsed && !variableParsed {
		e.syntaxErrorMessage("type attribute")
		return false
	}
	return true
}

// parseRangeCardinalityAttribute parses the range and cardinality facets.
func (e *Environment) parseRangeCardinalityAttribute(readSource string, constraints *ConstraintRecord, parsedConstraints *ConstraintParseRecord, constraintName string, multipleValuesAllowed bool) bool {
	isRange := constraintName == "range"
	if isRange {
		parsedConstraints.Range = true
	} else {
		parsedConstraints.Cardinality = true
	}

	// Cardinality only applies to multifield slots.
	if !isRange && !multipleValuesAllowed {
		e.printErrorID("CSTRNPSR", 5, true)
		e.PrintRouter(WERROR, "The cardinality attribute "+
			"can only be used with multifield slots.\n")
		return false
	}

	// Range is incompatible with the numeric allowed-... facets.
	if isRange && (parsedConstraints.AllowedValues || parsedConstraints.AllowedNumbers ||
		parsedConstraints.AllowedIntegers || parsedConstraints.AllowedFloats) {
		var tempPtr string
		switch {
		case parsedConstraints.AllowedValues:
			tempPtr = "allowed-values"
		case parsedConstraints.AllowedIntegers:
			tempPtr = "allowed-integers"
		case parsedConstraints.AllowedFloats:
			tempPtr = "allowed-floats"
		case parsedConstraints.AllowedNumbers:
			tempPtr = "allowed-numbers"
		}
		e.noConjunctiveUseError("range", tempPtr)
		return false
	}

	// Minimum value.
	e.SavePPBuffer(" ")
	inputToken := e.GetToken(readSource)
	switch {
	case inputToken.Kind == Integer || (inputToken.Kind == Float && isRange):
		if isRange {
			constraints.MinValue = GenConstant(inputToken.Kind, inputToken.Value)
		} else {
			if inputToken.Value.(*IntegerHashNode).Contents < 0 {
				e.printErrorID("CSTRNPSR", 6, true)
				e.PrintRouter(WERROR, "Minimum cardinality value must be greater than or equal to zero\n")
				return false
			}
			constraints.MinFields = GenConstant(inputToken.Kind, inputToken.Value)
		}
	case inputToken.Kind == SFVariable && inputToken.PrintForm == "?VARIABLE":
		// Keep the identity bound.
	default:
		e.syntaxErrorMessage(constraintName + " attribute")
		return false
	}

	// Maximum value.
	e.SavePPBuffer(" ")
	inputToken = e.GetToken(readSource)
	switch {
	case inputToken.Kind == Integer || (inputToken.Kind == Float && isRange):
		if isRange {
			constraints.MaxValue = GenConstant(inputToken.Kind, inputToken.Value)
		} else {
			constraints.MaxFields = GenConstant(inputToken.Kind, inputToken.Value)
		}
	case inputToken.Kind == SFVariable && inputToken.PrintForm == "?VARIABLE":
		// Keep the identity bound.
	default:
		e.syntaxErrorMessage(constraintName + " attribute")
		return false
	}

	if inputToken = e.GetToken(readSource); inputToken.Kind != RParen {
		e.syntaxErrorMessage("range attribute")
		return false
	}

	// The minimum must not exceed the maximum.
	if isRange {
		if compareNumbers(e, constraints.MinValue.Kind, constraints.MinValue.Value,
			constraints.MaxValue.Kind, constraints.MaxValue.Value) == greaterThan {
			e.printErrorID("CSTRNPSR", 2, true)
			e.PrintRouter(WERROR, "Minimum range value must be less than\n"+
				"or equal to the maximum range value\n")
			return false
		}
	} else {
		if compareNumbers(e, constraints.MinFields.Kind, constraints.MinFields.Value,
			constraints.MaxFields.Kind, constraints.MaxFields.Value) == greaterThan {
			e.printErrorID("CSTRNPSR", 2, true)
			e.PrintRouter(WERROR, "Minimum cardinality value must be less than\n"+
				"or equal to the maximum cardinality value\n")
			return false
		}
	}

	return true
}

// getConstraintTypeFromAllowedName maps an allowed-... facet name onto its
// restriction type code.
func getConstraintTypeFromAllowedName(constraintName string) int {
	switch constraintName {
	case "allowed-values":
		return typeUnknown
	case "allowed-symbols":
		return int(Symbol)
	case "allowed-strings":
		return int(String)
	case "allowed-lexemes":
		return typeSymbolOrString
	case "allowed-integers":
		return int(Integer)
	case "allowed-numbers":
		return typeIntegerOrFloat
	case "allowed-instance-names":
		return int(InstanceName)
	case "allowed-classes":
		return typeInstanceOrInstanceName
	case "allowed-floats":
		return int(Float)
	}
	return -2
}

// getConstraintTypeFromTypeName maps a type facet constant onto its type
// code.
func getConstraintTypeFromTypeName(name string) int {
	switch name {
	case "SYMBOL":
		return int(Symbol)
	case "STRING":
		return int(String)
	case "LEXEME":
		return typeSymbolOrString
	case "INTEGER":
		return int(Integer)
	case "FLOAT":
		return int(Float)
	case "NUMBER":
		return typeIntegerOrFloat
	case "INSTANCE-NAME":
		return int(InstanceName)
	case "INSTANCE-ADDRESS":
		return int(InstanceAddress)
	case "INSTANCE":
		return typeInstanceOrInstanceName
	case "EXTERNAL-ADDRESS":
		return int(ExternalAddress)
	case "FACT-ADDRESS":
		return int(FactAddress)
	}
	return -1
}

// getAttributeParseValue reports whether the named facet has already been
// parsed.
func getAttributeParseValue(constraintName string, parsedConstraints *ConstraintParseRecord) bool {
	switch constraintName {
	case "type":
		return parsedConstraints.Type
	case "range":
		return parsedConstraints.Range
	case "cardinality":
		return parsedConstraints.Cardinality
	case "allowed-values":
		return parsedConstraints.AllowedValues
	case "allowed-symbols":
		return parsedConstraints.AllowedSymbols
	case "allowed-strings":
		return parsedConstraints.AllowedStrings
	case "allowed-lexemes":
		return parsedConstraints.AllowedLexemes
	case "allowed-instance-names":
		return parsedConstraints.AllowedInstanceNames
	case "allowed-classes":
		return parsedConstraints.AllowedClasses
	case "allowed-integers":
		return parsedConstraints.AllowedIntegers
	case "allowed-floats":
		return parsedConstraints.AllowedFloats
	case "allowed-numbers":
		return parsedConstraints.AllowedNumbers
	}
	return true
}

// setRestrictionFlag sets or clears the restriction flags selected by the
// given restriction type code.
func setRestrictionFlag(restriction int, constraints *ConstraintRecord, value bool) {
	switch restriction {
	case typeUnknown:
		constraints.AnyRestriction = value
	case int(Symbol):
		constraints.SymbolRestriction = value
	case int(String):
		constraints.StringRestriction = value
	case int(Integer):
		constraints.IntegerRestriction = value
	case int(Float):
		constraints.FloatRestriction = value
	case typeIntegerOrFloat:
		constraints.IntegerRestriction = value
		constraints.FloatRestriction = value
	case typeSymbolOrString:
		constraints.SymbolRestriction = value
		constraints.StringRestriction = value
	case int(InstanceName):
		constraints.InstanceNameRestriction = value
	case typeInstanceOrInstanceName:
		constraints.ClassRestriction = value
	}
}

// setParseFlag records that the named facet has been parsed.
func setParseFlag(parsedConstraints *ConstraintParseRecord, constraintName string) {
	switch constraintName {
	case "range":
		parsedConstraints.Range = true
	case "type":
		parsedConstraints.Type = true
	case "cardinality":
		parsedConstraints.Cardinality = true
	case "allowed-symbols":
		parsedConstraints.AllowedSymbols = true
	case "allowed-strings":
		parsedConstraints.AllowedStrings = true
	case "allowed-lexemes":
		parsedConstraints.AllowedLexemes = true
	case "allowed-integers":
		parsedConstraints.AllowedIntegers = true
	case "allowed-floats":
		parsedConstraints.AllowedFloats = true
	case "allowed-numbers":
		parsedConstraints.AllowedNumbers = true
	case "allowed-values":
		parsedConstraints.AllowedValues = true
	case "allowed-instance-names":
		parsedConstraints.AllowedInstanceNames = true
	case "allowed-classes":
		parsedConstraints.AllowedClasses = true
	}
}
