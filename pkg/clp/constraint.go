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

// This file defines the constraint record, the aggregate describing the
// admissible value set for a slot or field, and the utilities for
// creating, copying, and cross-checking records.

// A ConstraintRecord captures the merged result of the type, range,
// cardinality, and allowed-... facets attached to a slot.  Restriction
// lists hold interned constants; range and cardinality bounds hold single
// constant expressions, with the +oo/-oo symbols acting as identity
// bounds.
type ConstraintRecord struct {
	// Type admission flags.  When AnyAllowed is set the per-type flags
	// are irrelevant.
	AnyAllowed               bool
	SymbolsAllowed           bool
	StringsAllowed           bool
	FloatsAllowed            bool
	IntegersAllowed          bool
	InstanceNamesAllowed     bool
	InstanceAddressesAllowed bool
	ExternalAddressesAllowed bool
	FactAddressesAllowed     bool
	VoidAllowed              bool

	SinglefieldsAllowed bool
	MultifieldsAllowed  bool

	// Restriction flags and lists.
	AnyRestriction          bool
	SymbolRestriction       bool
	StringRestriction       bool
	FloatRestriction        bool
	IntegerRestriction      bool
	ClassRestriction        bool
	InstanceNameRestriction bool
	RestrictionList         *Expression
	ClassList               *Expression

	MinValue  *Expression
	MaxValue  *Expression
	MinFields *Expression
	MaxFields *Expression

	// Multifield holds the element-wise constraint applied to each field
	// of a multifield value.
	Multifield *ConstraintRecord
}

// Constraint type codes.  The primitive kinds serve as their own codes;
// the compound codes below cover the facets that restrict unions of
// types.
const (
	typeUnknown             = -1
	typeSymbolOrString      = 1000 + iota
	typeIntegerOrFloat
	typeInstanceOrInstanceName
)

// GetConstraintRecord returns a fresh record admitting any value with
// unbounded range and cardinality.
func (e *Environment) GetConstraintRecord() *ConstraintRecord {
	c := &ConstraintRecord{}
	c.setAnyAllowedFlags(true)
	c.SinglefieldsAllowed = true
	c.MultifieldsAllowed = false
	c.MinValue = GenConstant(Symbol, e.NegativeInfinity)
	c.MaxValue = GenConstant(Symbol, e.PositiveInfinity)
	c.MinFields = GenConstant(Integer, e.Zero)
	c.MaxFields = GenConstant(Symbol, e.PositiveInfinity)
	return c
}

// setAnyAllowedFlags sets AnyAllowed and clears every per-type flag.
func (c *ConstraintRecord) setAnyAllowedFlags(value bool) {
	c.AnyAllowed = value
	c.SymbolsAllowed = false
	c.StringsAllowed = false
	c.FloatsAllowed = false
	c.IntegersAllowed = false
	c.InstanceNamesAllowed = false
	c.InstanceAddressesAllowed = false
	c.ExternalAddressesAllowed = false
	c.FactAddressesAllowed = false
	c.VoidAllowed = false
}

// setAnyRestrictionFlags clears every restriction flag.
func (c *ConstraintRecord) setAnyRestrictionFlags() {
	c.AnyRestriction = false
	c.SymbolRestriction = false
	c.StringRestriction = false
	c.FloatRestriction = false
	c.IntegerRestriction = false
	c.ClassRestriction = false
	c.InstanceNameRestriction = false
}

// CopyConstraintRecord returns a deep copy of c.
func CopyConstraintRecord(c *ConstraintRecord) *ConstraintRecord {
	if c == nil {
		return nil
	}
	n := *c
	n.RestrictionList = CopyExpression(c.RestrictionList)
	n.ClassList = CopyExpression(c.ClassList)
	n.MinValue = CopyExpression(c.MinValue)
	n.MaxValue = CopyExpression(c.MaxValue)
	n.MinFields = CopyExpression(c.MinFields)
	n.MaxFields = CopyExpression(c.MaxFields)
	n.Multifield = CopyConstraintRecord(c.Multifield)
	return &n
}

// SetConstraintType admits the type identified by code, clearing
// AnyAllowed.  True is returned if the type had already been admitted
// explicitly (a duplicate in the type facet).
func (c *ConstraintRecord) SetConstraintType(code int) bool {
	duplicate := false
	switch code {
	case int(Symbol):
		duplicate = c.SymbolsAllowed
		c.SymbolsAllowed = true
	case int(String):
		duplicate = c.StringsAllowed
		c.StringsAllowed = true
	case typeSymbolOrString:
		duplicate = c.SymbolsAllowed || c.StringsAllowed
		c.SymbolsAllowed = true
		c.StringsAllowed = true
	case int(Integer):
		duplicate = c.IntegersAllowed
		c.IntegersAllowed = true
	case int(Float):
		duplicate = c.FloatsAllowed
		c.FloatsAllowed = true
	case typeIntegerOrFloat:
		duplicate = c.IntegersAllowed || c.FloatsAllowed
		c.IntegersAllowed = true
		c.FloatsAllowed = true
	case int(InstanceName):
		duplicate = c.InstanceNamesAllowed
		c.InstanceNamesAllowed = true
	case int(InstanceAddress):
		duplicate = c.InstanceAddressesAllowed
		c.InstanceAddressesAllowed = true
	case typeInstanceOrInstanceName:
		duplicate = c.InstanceNamesAllowed || c.InstanceAddressesAllowed
		c.InstanceNamesAllowed = true
		c.InstanceAddressesAllowed = true
	case int(ExternalAddress):
		duplicate = c.ExternalAddressesAllowed
		c.ExternalAddressesAllowed = true
	case int(FactAddress):
		duplicate = c.FactAddressesAllowed
		c.FactAddressesAllowed = true
	}
	return duplicate
}

// typeAllowed reports whether a constant of the given kind is admitted.
func (c *ConstraintRecord) typeAllowed(kind Kind) bool {
	if c.AnyAllowed {
		return true
	}
	switch kind {
	case Symbol:
		return c.SymbolsAllowed
	case String:
		return c.StringsAllowed
	case Float:
		return c.FloatsAllowed
	case Integer:
		return c.IntegersAllowed
	case InstanceName:
		return c.InstanceNamesAllowed
	case InstanceAddress:
		return c.InstanceAddressesAllowed
	case ExternalAddress:
		return c.ExternalAddressesAllowed
	case FactAddress:
		return c.FactAddressesAllowed
	case Void:
		return c.VoidAllowed
	}
	return false
}

// Constraint violation codes returned by constraintCheckValue.
const (
	noViolation = iota
	typeViolation
	rangeViolation
	allowedValuesViolation
)

// constraintCheckValue checks a single constant against c, returning a
// violation code.
func (e *Environment) constraintCheckValue(kind Kind, value interface{}, c *ConstraintRecord) int {
	if c == nil {
		return noViolation
	}
	if !c.typeAllowed(kind) {
		return typeViolation
	}

	if kind == Integer || kind == Float {
		if compareNumbers(e, kind, value, expressionKind(c.MinValue), expressionValue(c.MinValue)) == lessThan {
			return rangeViolation
		}
		if compareNumbers(e, kind, value, expressionKind(c.MaxValue), expressionValue(c.MaxValue)) == greaterThan {
			return rangeViolation
		}
	}

	if restrictionFlagForKind(c, kind) {
		found := false
		for exp := c.RestrictionList; exp != nil; exp = exp.NextArg {
			if exp.Kind == kind && exp.Value == value {
				found = true
				break
			}
		}
		if !found {
			return allowedValuesViolation
		}
	}

	return noViolation
}

func restrictionFlagForKind(c *ConstraintRecord, kind Kind) bool {
	switch kind {
	case Symbol:
		return c.SymbolRestriction || c.AnyRestriction
	case String:
		return c.StringRestriction || c.AnyRestriction
	case Float:
		return c.FloatRestriction || c.AnyRestriction
	case Integer:
		return c.IntegerRestriction || c.AnyRestriction
	case InstanceName:
		return c.InstanceNameRestriction || c.AnyRestriction
	}
	return false
}

func expressionKind(expr *Expression) Kind {
	if expr == nil {
		return Void
	}
	return expr.Kind
}

func expressionValue(expr *Expression) interface{} {
	if expr == nil {
		return nil
	}
	return expr.Value
}

// CheckConstraintParseConflicts cross-checks a fully parsed record: every
// active restriction's type must still be admitted, range endpoint types
// must match admitted numeric types, and allowed-classes must be
// compatible with instance admission.  False is returned after routing a
// conflict message naming the two facets.
func (e *Environment) CheckConstraintParseConflicts(c *ConstraintRecord) bool {
	switch {
	case c.AnyAllowed:
		// No conflicts possible against the type facet.
	case c.SymbolRestriction && !c.SymbolsAllowed:
		e.attributeConflictErrorMessage("type", "allowed-symbols")
		return false
	case c.StringRestriction && !c.StringsAllowed:
		e.attributeConflictErrorMessage("type", "allowed-strings")
		return false
	case c.IntegerRestriction && !c.IntegersAllowed:
		e.attributeConflictErrorMessage("type", "allowed-integers/numbers")
		return false
	case c.FloatRestriction && !c.FloatsAllowed:
		e.attributeConflictErrorMessage("type", "allowed-floats/numbers")
		return false
	case c.ClassRestriction && !c.InstanceAddressesAllowed && !c.InstanceNamesAllowed:
		e.attributeConflictErrorMessage("type", "allowed-classes")
		return false
	case c.InstanceNameRestriction && !c.InstanceNamesAllowed:
		e.attributeConflictErrorMessage("type", "allowed-instance-names")
		return false
	case c.AnyRestriction:
		for exp := c.RestrictionList; exp != nil; exp = exp.NextArg {
			if e.constraintCheckValue(exp.Kind, exp.Value, c) != noViolation {
				e.attributeConflictErrorMessage("type", "allowed-values")
				return false
			}
		}
	}

	// Range endpoints must be of an admitted numeric type.
	if !c.AnyAllowed {
		for _, bound := range []*Expression{c.MinValue, c.MaxValue} {
			if bound == nil {
				continue
			}
			if (bound.Kind == Integer && !c.IntegersAllowed) ||
				(bound.Kind == Float && !c.FloatsAllowed) {
				e.attributeConflictErrorMessage("type", "range")
				return false
			}
		}
	}

	if c.ClassList != nil && !c.AnyAllowed &&
		!c.InstanceNamesAllowed && !c.InstanceAddressesAllowed {
		e.attributeConflictErrorMessage("type", "allowed-classes")
		return false
	}

	return true
}

// attributeConflictErrorMessage routes the generic facet conflict
// diagnostic.
func (e *Environment) attributeConflictErrorMessage(attribute1, attribute2 string) {
	e.printErrorID("CSTRNPSR", 1, true)
	e.PrintRouter(WERROR, "The "+attribute1+" attribute conflicts with the "+
		attribute2+" attribute.\n")
}

// compareNumbers compares two numeric constants, treating the interned
// +oo/-oo symbols as the identity bounds.
func compareNumbers(e *Environment, kind1 Kind, v1 interface{}, kind2 Kind, v2 interface{}) int {
	if v1 == v2 {
		return equalTo
	}
	if v1 == e.PositiveInfinity || v2 == e.NegativeInfinity {
		return greaterThan
	}
	if v1 == e.NegativeInfinity || v2 == e.PositiveInfinity {
		return lessThan
	}

	toFloat := func(kind Kind, v interface{}) float64 {
		if kind == Integer {
			return float64(v.(*IntegerHashNode).Contents)
		}
		return v.(*FloatHashNode).Contents
	}

	if kind1 == Integer && kind2 == Integer {
		a, b := v1.(*IntegerHashNode).Contents, v2.(*IntegerHashNode).Contents
		switch {
		case a < b:
			return lessThan
		case a > b:
			return greaterThan
		}
		return equalTo
	}

	a, b := toFloat(kind1, v1), toFloat(kind2, v2)
	switch {
	case a < b:
		return lessThan
	case a > b:
		return greaterThan
	}
	return equalTo
}

// ExpressionToConstraintRecord converts a constant or call expression into
// the tightest record admitting its possible values.  A constant maps to a
// record admitting exactly its type and value; a call maps through the
// function's return type mask.
func (e *Environment) ExpressionToConstraintRecord(theExpression *Expression) *ConstraintRecord {
	rv := e.GetConstraintRecord()
	if theExpression == nil {
		return rv
	}

	switch theExpression.Kind {
	case FCall:
		return e.FunctionCallToConstraintRecord(theExpression.Value.(*FunctionDefinition))
	case SFVariable, MFVariable, GblVariable, MFGblVariable:
		return rv
	}

	if !constantKind(theExpression.Kind) {
		return rv
	}

	rv.setAnyAllowedFlags(false)
	rv.SetConstraintType(int(theExpression.Kind))
	switch theExpression.Kind {
	case Symbol, String, Integer, Float, InstanceName:
		setRestrictionFlag(int(theExpression.Kind), rv, true)
		rv.RestrictionList = GenConstant(theExpression.Kind, theExpression.Value)
	}
	return rv
}

// FunctionCallToConstraintRecord converts a function's return type mask
// into a constraint record.
func (e *Environment) FunctionCallToConstraintRecord(fd *FunctionDefinition) *ConstraintRecord {
	rv := e.ArgumentTypeToConstraintRecord(fd.ReturnTypeMask)
	return rv
}

// ArgumentTypeToConstraintRecord converts a restriction type mask into a
// constraint record.
func (e *Environment) ArgumentTypeToConstraintRecord(mask uint) *ConstraintRecord {
	rv := e.GetConstraintRecord()
	if mask == AnyBits || mask == 0 {
		return rv
	}
	rv.setAnyAllowedFlags(false)
	rv.SymbolsAllowed = mask&(SymbolBits|BooleanBits) != 0
	rv.StringsAllowed = mask&StringBits != 0
	rv.FloatsAllowed = mask&FloatBits != 0
	rv.IntegersAllowed = mask&IntegerBits != 0
	rv.InstanceNamesAllowed = mask&InstanceNameBits != 0
	rv.InstanceAddressesAllowed = mask&InstanceAddressBits != 0
	rv.ExternalAddressesAllowed = mask&ExternalAddressBits != 0
	rv.FactAddressesAllowed = mask&FactAddressBits != 0
	rv.VoidAllowed = mask&VoidBits != 0
	if mask&MultifieldBits != 0 {
		rv.MultifieldsAllowed = true
		rv.Multifield = e.GetConstraintRecord()
	}
	return rv
}
