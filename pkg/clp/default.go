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

// This file derives default slot values from constraint records and parses
// explicit (default ...) declarations.

// A Value is a typed atomic or multifield value handed back to callers.
type Value struct {
	Kind  Kind
	Value interface{}
	// Fields of a multifield value; nil otherwise.
	Fields []Value
}

// DeriveDefaultFromConstraints picks a default value admitted by the
// constraint record.  Types are tried in a fixed order: symbol, string,
// integer, float, instance name, instance address, fact address, external
// address.  Numeric defaults prefer the range minimum, then the maximum,
// cross-converting between integer and float when needed.  For a
// multifield slot the cardinality minimum determines the repeat count.
func (e *Environment) DeriveDefaultFromConstraints(constraints *ConstraintRecord, multifield bool) Value {
	if constraints == nil {
		if multifield {
			return Value{Kind: Multifield, Fields: []Value{}}
		}
		return Value{Kind: Symbol, Value: e.AddSymbol("nil")}
	}

	var theType Kind
	var theValue interface{}

	switch {
	case constraints.AnyAllowed || constraints.SymbolsAllowed:
		theType = Symbol
		theValue = e.findDefaultValue(Symbol, constraints, e.AddSymbol("nil"))
	case constraints.StringsAllowed:
		theType = String
		theValue = e.findDefaultValue(String, constraints, e.AddSymbol(""))
	case constraints.IntegersAllowed:
		theType = Integer
		theValue = e.findDefaultValue(Integer, constraints, e.AddLong(0))
	case constraints.FloatsAllowed:
		theType = Float
		theValue = e.findDefaultValue(Float, constraints, e.AddDouble(0.0))
	case constraints.InstanceNamesAllowed:
		theType = InstanceName
		theValue = e.findDefaultValue(InstanceName, constraints, e.AddSymbol("nil"))
	case constraints.InstanceAddressesAllowed:
		theType = InstanceAddress
		theValue = nil
	case constraints.FactAddressesAllowed:
		theType = FactAddress
		theValue = nil
	case constraints.ExternalAddressesAllowed:
		theType = ExternalAddress
		theValue = e.AddExternalAddress(nil, 0)
	default:
		theType = Symbol
		theValue = e.AddSymbol("nil")
	}

	if multifield {
		var minFields int64
		if constraints.MinFields != nil &&
			constraints.MinFields.Value != e.NegativeInfinity {
			if n, ok := constraints.MinFields.Value.(*IntegerHashNode); ok {
				minFields = n.Contents
			}
		}
		fields := make([]Value, 0, minFields)
		for i := int64(0); i < minFields; i++ {
			fields = append(fields, Value{Kind: theType, Value: theValue})
		}
		return Value{Kind: Multifield, Fields: fields}
	}

	return Value{Kind: theType, Value: theValue}
}

// findDefaultValue searches the restriction list for a value of the
// requested type, then falls back to the range bounds for numeric types,
// then to standardDefault.
func (e *Environment) findDefaultValue(theType Kind, constraints *ConstraintRecord, standardDefault interface{}) interface{} {
	for theList := constraints.RestrictionList; theList != nil; theList = theList.NextArg {
		if theList.Kind == theType {
			return theList.Value
		}
	}

	switch theType {
	case Integer:
		switch {
		case constraints.MinValue.Kind == Integer:
			return constraints.MinValue.Value
		case constraints.MinValue.Kind == Float:
			return e.AddLong(int64(constraints.MinValue.Value.(*FloatHashNode).Contents))
		case constraints.MaxValue.Kind == Integer:
			return constraints.MaxValue.Value
		case constraints.MaxValue.Kind == Float:
			return e.AddLong(int64(constraints.MaxValue.Value.(*FloatHashNode).Contents))
		}
	case Float:
		switch {
		case constraints.MinValue.Kind == Float:
			return constraints.MinValue.Value
		case constraints.MinValue.Kind == Integer:
			return e.AddDouble(float64(constraints.MinValue.Value.(*IntegerHashNode).Contents))
		case constraints.MaxValue.Kind == Float:
			return constraints.MaxValue.Value
		case constraints.MaxValue.Kind == Integer:
			return e.AddDouble(float64(constraints.MaxValue.Value.(*IntegerHashNode).Contents))
		}
	}

	return standardDefault
}

// ParseDefault parses the body of a (default ...) or (default-dynamic ...)
// declaration: a sequence of constant expressions, or one of the special
// symbols ?DERIVE and ?NONE.  The parsed expression chain is returned;
// noneSpecified and deriveSpecified report the special forms.  Nil with
// err set reports a parse failure.
func (e *Environment) ParseDefault(readSource string, multifield, dynamic bool) (defaultList *Expression, noneSpecified, deriveSpecified bool, err bool) {
	var lastDefault *Expression
	specialVarCode := -1 // 0 = ?DERIVE, 1 = ?NONE

	theToken := e.GetToken(readSource)
	for theToken.Kind != RParen {
		e.SavePPBuffer(" ")

		switch theToken.Kind {
		case Symbol, String, Integer, Float, InstanceName:
			if specialVarCode != -1 {
				e.syntaxErrorMessage("default attribute")
				return nil, false, false, true
			}
			newItem := GenConstant(theToken.Kind, theToken.Value)
			if lastDefault == nil {
				defaultList = newItem
			} else {
				lastDefault.NextArg = newItem
			}
			lastDefault = newItem

		case SFVariable:
			bad := false
			switch theToken.PrintForm {
			case "?DERIVE":
				deriveSpecified = true
				if specialVarCode != -1 || defaultList != nil || dynamic {
					bad = true
				}
				specialVarCode = 0
			case "?NONE":
				noneSpecified = true
				if specialVarCode != -1 || defaultList != nil || dynamic {
					bad = true
				}
				specialVarCode = 1
			default:
				bad = true
			}
			if bad {
				e.syntaxErrorMessage("default attribute")
				return nil, false, false, true
			}

		default:
			e.syntaxErrorMessage("default attribute")
			return nil, false, false, true
		}

		theToken = e.GetToken(readSource)
	}

	// A single field slot takes exactly one default value.
	if !multifield && !noneSpecified && !deriveSpecified {
		if defaultList == nil || defaultList.NextArg != nil {
			e.printErrorID("DEFAULT", 1, true)
			e.PrintRouter(WERROR, "The default value for a single field slot must be a single field value\n")
			return nil, false, false, true
		}
	}

	e.PPBackup()
	e.PPBackup()
	e.SavePPBuffer(")")

	return defaultList, noneSpecified, deriveSpecified, false
}
