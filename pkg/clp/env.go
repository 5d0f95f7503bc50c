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

// This file defines the Environment, the single root handle owning every
// table in the core.  Multiple environments may coexist in one process;
// nothing in this package uses package-level mutable state.

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// An Environment holds the complete state of one compilation core: the
// atom tables, the scanner state, the module list, the function registry,
// and the I/O routers.  An Environment is not safe for concurrent use; a
// host driving compilation from multiple goroutines must give each its own
// Environment.
type Environment struct {
	// Atom tables.
	symbolTable          []*SymbolHashNode
	floatTable           []*FloatHashNode
	integerTable         []*IntegerHashNode
	bitMapTable          []*BitMapHashNode
	externalAddressTable []*ExternalAddressHashNode
	externalAddressTypes []*ExternalAddressType
	currentGarbageFrame  *garbageFrame

	// Permanent seed atoms.
	TrueSymbol       *SymbolHashNode
	FalseSymbol      *SymbolHashNode
	PositiveInfinity *SymbolHashNode
	NegativeInfinity *SymbolHashNode
	Zero             *IntegerHashNode

	// I/O.
	routers       []*Router
	stringSources map[string]*stringSource
	ungetBuffers  map[string][]int
	lineCount     int64
	errout        io.Writer

	// Pretty print buffer.
	ppBuffer        strings.Builder
	ppBackupOnce    int
	ppBackupTwice   int
	ppBufferEnabled bool
	ppIndentDepth   int

	// Scanner.
	ignoreCompletionErrors bool

	// Expression parsing.
	sequenceOpMode bool
	returnContext  bool
	breakContext   bool
	savedContexts  *savedContext

	// Function registry.
	functions      map[string]*FunctionDefinition
	listOfFuncs    []*FunctionDefinition
	ptrEq          *FunctionDefinition
	ptrNeq         *FunctionDefinition
	ptrAnd         *FunctionDefinition
	ptrOr          *FunctionDefinition
	ptrNot         *FunctionDefinition
	ptrExpCall     *FunctionDefinition
	ptrExpMultiply *FunctionDefinition
	ptrGetGlobal   *FunctionDefinition

	// Modules.
	listOfDefmodules      []*Defmodule
	currentModule         *Defmodule
	savedModules          []*Defmodule
	mainModuleRedefinable bool
	portConstructItems    []*PortConstructItem
	constructs            map[string]*Construct
	afterModuleDefined    []func(*Environment)

	// Execution flags.  HaltExecution cancels the outer construct loops;
	// EvaluationError reports that the most recent evaluation failed.
	HaltExecution   bool
	EvaluationError bool
}

// NewEnvironment creates a fully initialised environment with the MAIN
// module, the built-in functions used by the network generator, and the
// standard routers in place.
func NewEnvironment() *Environment {
	e := &Environment{
		symbolTable:          make([]*SymbolHashNode, symbolHashSize),
		floatTable:           make([]*FloatHashNode, floatHashSize),
		integerTable:         make([]*IntegerHashNode, integerHashSize),
		bitMapTable:          make([]*BitMapHashNode, bitMapHashSize),
		externalAddressTable: make([]*ExternalAddressHashNode, externalAddressHashSize),
		stringSources:        map[string]*stringSource{},
		ungetBuffers:         map[string][]int{},
		functions:            map[string]*FunctionDefinition{},
		constructs:           map[string]*Construct{},
		errout:               os.Stderr,
		ppBufferEnabled:      true,
	}
	e.currentGarbageFrame = &garbageFrame{}
	e.addDefaultRouters()

	e.TrueSymbol = e.permanentSymbol("TRUE")
	e.FalseSymbol = e.permanentSymbol("FALSE")
	e.PositiveInfinity = e.permanentSymbol("+oo")
	e.NegativeInfinity = e.permanentSymbol("-oo")
	e.Zero = e.AddLong(0)
	e.Zero.permanent = true
	e.IncrementIntegerCount(e.Zero)

	e.defineStandardFunctions()
	e.initializeDefmodules()
	return e
}

func (e *Environment) permanentSymbol(contents string) *SymbolHashNode {
	n := e.AddSymbol(contents)
	n.permanent = true
	e.IncrementSymbolCount(n)
	return n
}

// systemError reports an internal invariant violation and aborts.  The
// diagnostic identifies the module and error index the way the rest of the
// error machinery does, so a host capturing WERROR sees it before the
// panic unwinds.
func (e *Environment) systemError(module string, id int) {
	e.PrintRouter(WERROR, "\n*** SYSTEM ERROR ***\n")
	e.PrintRouter(WERROR, fmt.Sprintf("ID = %s%d\n", module, id))
	e.PrintRouter(WERROR, "An internal inconsistency has been detected.\n")
	panic(fmt.Sprintf("clp: system error %s%d", module, id))
}

// SetIgnoreCompletionErrors controls whether the scanner reports an
// end-of-file inside a string, returning the previous setting.
func (e *Environment) SetIgnoreCompletionErrors(on bool) bool {
	old := e.ignoreCompletionErrors
	e.ignoreCompletionErrors = on
	return old
}

// SetSequenceOperatorRecognition controls whether multifield variables in
// call argument positions are expanded at call time, returning the
// previous setting.
func (e *Environment) SetSequenceOperatorRecognition(on bool) bool {
	old := e.sequenceOpMode
	e.sequenceOpMode = on
	return old
}

// GetSequenceOperatorRecognition reports whether sequence expansion is
// recognised.
func (e *Environment) GetSequenceOperatorRecognition() bool { return e.sequenceOpMode }

// SetHaltExecution sets the cooperative cancellation flag polled at the
// top of construct loops.
func (e *Environment) SetHaltExecution(on bool) { e.HaltExecution = on }

// SetEvaluationError records that an evaluation failed.
func (e *Environment) SetEvaluationError(on bool) {
	if on {
		e.HaltExecution = true
	}
	e.EvaluationError = on
}
