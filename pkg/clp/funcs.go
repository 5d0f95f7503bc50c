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

// This file implements the function registry.  Functions are looked up by
// name while parsing calls; each definition carries an argument count
// range and a restriction string describing the types accepted at each
// position.
//
// The restriction string is partitioned by ';' into positional slots.
// Each slot is any combination of the characters
//
//    l d s y n m f i e v b *
//
// meaning integer, float, string, symbol, instance-name, multifield,
// fact-address, instance-address, external-address, void, boolean, and
// any.  The slot after the last ';' applies to all remaining positions.

// Unbounded marks an argument count with no upper limit.
const Unbounded = -1

// A FunctionDefinition describes one callable function.  Parser, when
// non-nil, replaces the standard argument collection for this function.
type FunctionDefinition struct {
	Name           *SymbolHashNode
	ReturnTypeMask uint
	MinArgs        int
	MaxArgs        int
	Restrictions   string
	Parser         func(e *Environment, top *Expression, readSource string) *Expression
	Overloadable   bool
	SequenceUseOK  bool
}

// DefineFunction registers a function under name and returns its
// definition.  Redefining a name replaces the previous definition.
func (e *Environment) DefineFunction(name string, returnTypeMask uint, minArgs, maxArgs int, restrictions string) *FunctionDefinition {
	fd := &FunctionDefinition{
		Name:           e.AddSymbol(name),
		ReturnTypeMask: returnTypeMask,
		MinArgs:        minArgs,
		MaxArgs:        maxArgs,
		Restrictions:   restrictions,
		Overloadable:   true,
		SequenceUseOK:  true,
	}
	e.IncrementSymbolCount(fd.Name)
	if old, ok := e.functions[name]; ok {
		for i, f := range e.listOfFuncs {
			if f == old {
				e.listOfFuncs[i] = fd
				break
			}
		}
	} else {
		e.listOfFuncs = append(e.listOfFuncs, fd)
	}
	e.functions[name] = fd
	return fd
}

// FindFunction returns the definition registered under name, or nil.
func (e *Environment) FindFunction(name string) *FunctionDefinition {
	return e.functions[name]
}

// ListOfFunctions returns the registered definitions in definition order.
func (e *Environment) ListOfFunctions() []*FunctionDefinition {
	return e.listOfFuncs
}

// restrictionExists reports whether the restriction string carries an
// explicit slot for the given argument position.  A position past the last
// ';'-separated slot is not present.
func restrictionExists(restrictionString string, position int) bool {
	currentPosition := 0
	for i := 0; i < len(restrictionString); i++ {
		if restrictionString[i] == ';' {
			if currentPosition == position {
				return true
			}
			currentPosition++
		}
	}
	return false
}

// populateRestriction decodes the type mask for the given argument
// position, falling back to defaultRestriction when the slot is empty.  A
// position past the last ';' decodes the trailing slot.
func (e *Environment) populateRestriction(defaultRestriction uint, restrictionString string, position int) uint {
	var restriction uint
	currentPosition := 0
	valuesRead := 0

	for i := 0; i < len(restrictionString); i++ {
		switch c := restrictionString[i]; c {
		case ';':
			if currentPosition == position {
				if valuesRead == 0 {
					return defaultRestriction
				}
				return restriction
			}
			currentPosition++
			restriction = 0
			valuesRead = 0

		case 'l':
			restriction |= IntegerBits
			valuesRead++
		case 'd':
			restriction |= FloatBits
			valuesRead++
		case 's':
			restriction |= StringBits
			valuesRead++
		case 'y':
			restriction |= SymbolBits
			valuesRead++
		case 'n':
			restriction |= InstanceNameBits
			valuesRead++
		case 'm':
			restriction |= MultifieldBits
			valuesRead++
		case 'f':
			restriction |= FactAddressBits
			valuesRead++
		case 'i':
			restriction |= InstanceAddressBits
			valuesRead++
		case 'e':
			restriction |= ExternalAddressBits
			valuesRead++
		case 'v':
			restriction |= VoidBits
			valuesRead++
		case 'b':
			restriction |= BooleanBits
			valuesRead++
		case '*':
			restriction |= AnyBits
			valuesRead++

		default:
			e.PrintRouter(WERROR, "Invalid argument type character "+string(c)+"\n")
			valuesRead++
		}
	}

	if valuesRead == 0 {
		return defaultRestriction
	}
	return restriction
}

// kindTypeBit maps a constant kind onto its restriction bit.
func kindTypeBit(kind Kind) uint {
	switch kind {
	case Float:
		return FloatBits
	case Integer:
		return IntegerBits
	case Symbol:
		return SymbolBits
	case String:
		return StringBits
	case Multifield:
		return MultifieldBits
	case ExternalAddress:
		return ExternalAddressBits
	case FactAddress:
		return FactAddressBits
	case InstanceAddress:
		return InstanceAddressBits
	case InstanceName:
		return InstanceNameBits
	case Void:
		return VoidBits
	}
	return AnyBits
}

// defineStandardFunctions seeds the functions the compilation core itself
// references: the boolean connectives used to compose network tests, the
// comparison primitives, and the sequence expansion machinery.
func (e *Environment) defineStandardFunctions() {
	e.ptrAnd = e.DefineFunction("and", BooleanBits, 2, Unbounded, "")
	e.ptrOr = e.DefineFunction("or", BooleanBits, 2, Unbounded, "")
	e.ptrNot = e.DefineFunction("not", BooleanBits, 1, 1, "")
	e.ptrEq = e.DefineFunction("eq", BooleanBits, 2, Unbounded, "")
	e.ptrNeq = e.DefineFunction("neq", BooleanBits, 2, Unbounded, "")
	e.DefineFunction("progn", AnyBits, 0, Unbounded, "")

	e.ptrExpCall = e.DefineFunction("(expansion-call)", AnyBits, 1, Unbounded, "")
	e.ptrExpMultiply = e.DefineFunction("expand$", MultifieldBits, 1, 1, "m")
	e.ptrExpMultiply.SequenceUseOK = false
	e.ptrGetGlobal = e.DefineFunction("(get-defglobal-value)", AnyBits, 1, 1, "y")
}
