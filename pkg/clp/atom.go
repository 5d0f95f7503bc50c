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

// This file implements the atom interner: hash-consed, reference-counted
// tables for lexemes (symbols, strings, instance names share one table),
// floats, integers, bitmaps, and external addresses.  Equal payloads always
// yield the same node, so equality of interned values is pointer equality.
//
// A node whose count drops to zero is placed on the current garbage frame's
// ephemeral list; the next sweep reclaims it unless something re-referenced
// it in the meantime.

import (
	"math"
	"reflect"
)

// Table sizes are primes.
const (
	symbolHashSize          = 63559
	floatHashSize           = 8191
	integerHashSize         = 8191
	bitMapHashSize          = 8191
	externalAddressHashSize = 8191
)

// A SymbolHashNode is an interned lexeme.  Symbols, strings, and instance
// names all live in the lexeme table; the distinction between them is
// carried by the token or expression referencing the node.
type SymbolHashNode struct {
	next            *SymbolHashNode
	count           int
	bucket          uint
	markedEphemeral bool
	permanent       bool

	Contents string
}

func (n *SymbolHashNode) String() string { return n.Contents }

// Count returns the number of persistent references to n.
func (n *SymbolHashNode) Count() int { return n.count }

// A FloatHashNode is an interned double-precision float.
type FloatHashNode struct {
	next            *FloatHashNode
	count           int
	bucket          uint
	markedEphemeral bool
	permanent       bool

	Contents float64
}

// An IntegerHashNode is an interned 64-bit signed integer.
type IntegerHashNode struct {
	next            *IntegerHashNode
	count           int
	bucket          uint
	markedEphemeral bool
	permanent       bool

	Contents int64
}

// A BitMapHashNode is an interned byte string.
type BitMapHashNode struct {
	next            *BitMapHashNode
	count           int
	bucket          uint
	markedEphemeral bool
	permanent       bool

	Contents []byte
}

// An ExternalAddressHashNode is an interned reference to a host object.
// Type indexes the table of external address kinds registered with the
// environment.
type ExternalAddressHashNode struct {
	next            *ExternalAddressHashNode
	count           int
	bucket          uint
	markedEphemeral bool

	Address interface{}
	Type    int
}

// An ExternalAddressType supplies the printing and finalisation hooks for
// one kind of external address.  Discard must not reenter the interner.
type ExternalAddressType struct {
	Name       string
	LongPrint  func(e *Environment, logicalName string, x *ExternalAddressHashNode)
	ShortPrint func(e *Environment, logicalName string, x *ExternalAddressHashNode)
	Discard    func(e *Environment, x *ExternalAddressHashNode)
}

// An ephemeron links a zero-count node onto a garbage frame.
type ephemeron struct {
	value interface{}
	next  *ephemeron
}

// A garbageFrame collects the atoms that became ephemeral since the frame
// was pushed.  Frames nest; popping a frame sweeps it.
type garbageFrame struct {
	prior             *garbageFrame
	ephemeralSymbols  *ephemeron
	ephemeralFloats   *ephemeron
	ephemeralIntegers *ephemeron
	ephemeralBitMaps  *ephemeron
	ephemeralExterns  *ephemeron
}

/* Hashing */

func hashSymbol(word string, rng uint) uint {
	var tally uint
	for i := 0; i < len(word); i++ {
		tally = tally*127 + uint(word[i])
	}
	return tally % rng
}

func hashFloat(number float64, rng uint) uint {
	var tally uint
	bits := math.Float64bits(number)
	for i := 0; i < 8; i++ {
		tally = tally*127 + uint(byte(bits>>(8*uint(i))))
	}
	return tally % rng
}

func hashInteger(number int64, rng uint) uint {
	if number < 0 {
		number = -number
	}
	return uint(uint64(number)) % rng
}

func hashBitMap(word []byte, rng uint) uint {
	const wordSize = 8
	var count uint64
	i := 0
	for ; i+wordSize <= len(word); i += wordSize {
		var tmp uint64
		for k := 0; k < wordSize; k++ {
			tmp |= uint64(word[i+k]) << (8 * uint(k))
		}
		count += tmp
	}
	for ; i < len(word); i++ {
		count += uint64(word[i])
	}
	return uint(count) % rng
}

func hashExternalAddress(address interface{}, rng uint) uint {
	v := reflect.ValueOf(address)
	switch v.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Chan, reflect.Map,
		reflect.Func, reflect.Slice:
		return uint(v.Pointer()/256) % rng
	}
	return 0
}

/* Lexemes */

// AddSymbol interns contents in the lexeme table and returns its node.
// Adding an already interned payload returns the existing node.
func (e *Environment) AddSymbol(contents string) *SymbolHashNode {
	tally := hashSymbol(contents, symbolHashSize)
	for peek := e.symbolTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == contents {
			return peek
		}
	}

	peek := &SymbolHashNode{
		Contents: contents,
		bucket:   tally,
		next:     e.symbolTable[tally],
	}
	e.symbolTable[tally] = peek
	e.addEphemeralSymbol(peek)
	return peek
}

// FindSymbol returns the interned node for contents, or nil if contents has
// never been interned (or has been swept).
func (e *Environment) FindSymbol(contents string) *SymbolHashNode {
	tally := hashSymbol(contents, symbolHashSize)
	for peek := e.symbolTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == contents {
			return peek
		}
	}
	return nil
}

// IncrementSymbolCount adds a persistent reference to n.
func (e *Environment) IncrementSymbolCount(n *SymbolHashNode) {
	if n.count < 0 {
		e.systemError("SYMBOL", 1)
	}
	n.count++
}

// DecrementSymbolCount removes a persistent reference from n.  When the
// count reaches zero the node becomes ephemeral in the current garbage
// frame.  Decrementing a zero-count node is a system error.
func (e *Environment) DecrementSymbolCount(n *SymbolHashNode) {
	if n.count == 0 {
		e.systemError("SYMBOL", 2)
	}
	n.count--
	if n.count != 0 {
		return
	}
	if !n.markedEphemeral {
		e.addEphemeralSymbol(n)
	}
}

func (e *Environment) addEphemeralSymbol(n *SymbolHashNode) {
	n.markedEphemeral = true
	f := e.currentGarbageFrame
	f.ephemeralSymbols = &ephemeron{value: n, next: f.ephemeralSymbols}
}

// EphemerateSymbol marks n transient without touching its count.  Used when
// a value originates on the evaluation stack rather than in a persistent
// structure.
func (e *Environment) EphemerateSymbol(n *SymbolHashNode) {
	if n.markedEphemeral || n.permanent {
		return
	}
	e.addEphemeralSymbol(n)
}

// EphemerateFloat marks n transient without touching its count.
func (e *Environment) EphemerateFloat(n *FloatHashNode) {
	if n.markedEphemeral || n.permanent {
		return
	}
	e.addEphemeralFloat(n)
}

// EphemerateInteger marks n transient without touching its count.
func (e *Environment) EphemerateInteger(n *IntegerHashNode) {
	if n.markedEphemeral || n.permanent {
		return
	}
	e.addEphemeralInteger(n)
}

// EphemerateExternalAddress marks n transient without touching its count.
func (e *Environment) EphemerateExternalAddress(n *ExternalAddressHashNode) {
	if n.markedEphemeral {
		return
	}
	e.addEphemeralExtern(n)
}

// EphemerateValue marks an atom of any interned kind transient.  Unhashed
// kinds are ignored.
func (e *Environment) EphemerateValue(kind Kind, value interface{}) {
	switch kind {
	case Symbol, String, InstanceName:
		e.EphemerateSymbol(value.(*SymbolHashNode))
	case Float:
		e.EphemerateFloat(value.(*FloatHashNode))
	case Integer:
		e.EphemerateInteger(value.(*IntegerHashNode))
	case ExternalAddress:
		e.EphemerateExternalAddress(value.(*ExternalAddressHashNode))
	}
}

func (e *Environment) removeSymbolNode(n *SymbolHashNode) {
	prev := &e.symbolTable[n.bucket]
	for *prev != nil {
		if *prev == n {
			*prev = n.next
			return
		}
		prev = &(*prev).next
	}
	e.systemError("SYMBOL", 3)
}

/* Floats */

// AddDouble interns number in the float table.
func (e *Environment) AddDouble(number float64) *FloatHashNode {
	tally := hashFloat(number, floatHashSize)
	for peek := e.floatTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == number {
			return peek
		}
	}

	peek := &FloatHashNode{
		Contents: number,
		bucket:   tally,
		next:     e.floatTable[tally],
	}
	e.floatTable[tally] = peek
	e.addEphemeralFloat(peek)
	return peek
}

// FindDouble returns the interned node for number, or nil.
func (e *Environment) FindDouble(number float64) *FloatHashNode {
	tally := hashFloat(number, floatHashSize)
	for peek := e.floatTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == number {
			return peek
		}
	}
	return nil
}

// IncrementFloatCount adds a persistent reference to n.
func (e *Environment) IncrementFloatCount(n *FloatHashNode) { n.count++ }

// DecrementFloatCount removes a persistent reference from n.
func (e *Environment) DecrementFloatCount(n *FloatHashNode) {
	if n.count == 0 {
		e.systemError("SYMBOL", 4)
	}
	n.count--
	if n.count == 0 && !n.markedEphemeral {
		e.addEphemeralFloat(n)
	}
}

func (e *Environment) addEphemeralFloat(n *FloatHashNode) {
	n.markedEphemeral = true
	f := e.currentGarbageFrame
	f.ephemeralFloats = &ephemeron{value: n, next: f.ephemeralFloats}
}

func (e *Environment) removeFloatNode(n *FloatHashNode) {
	prev := &e.floatTable[n.bucket]
	for *prev != nil {
		if *prev == n {
			*prev = n.next
			return
		}
		prev = &(*prev).next
	}
	e.systemError("SYMBOL", 5)
}

/* Integers */

// AddLong interns number in the integer table.
func (e *Environment) AddLong(number int64) *IntegerHashNode {
	tally := hashInteger(number, integerHashSize)
	for peek := e.integerTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == number {
			return peek
		}
	}

	peek := &IntegerHashNode{
		Contents: number,
		bucket:   tally,
		next:     e.integerTable[tally],
	}
	e.integerTable[tally] = peek
	e.addEphemeralInteger(peek)
	return peek
}

// FindLong returns the interned node for number, or nil.
func (e *Environment) FindLong(number int64) *IntegerHashNode {
	tally := hashInteger(number, integerHashSize)
	for peek := e.integerTable[tally]; peek != nil; peek = peek.next {
		if peek.Contents == number {
			return peek
		}
	}
	return nil
}

// IncrementIntegerCount adds a persistent reference to n.
func (e *Environment) IncrementIntegerCount(n *IntegerHashNode) { n.count++ }

// DecrementIntegerCount removes a persistent reference from n.
func (e *Environment) DecrementIntegerCount(n *IntegerHashNode) {
	if n.count == 0 {
		e.systemError("SYMBOL", 6)
	}
	n.count--
	if n.count == 0 && !n.markedEphemeral {
		e.addEphemeralInteger(n)
	}
}

func (e *Environment) addEphemeralInteger(n *IntegerHashNode) {
	n.markedEphemeral = true
	f := e.currentGarbageFrame
	f.ephemeralIntegers = &ephemeron{value: n, next: f.ephemeralIntegers}
}

func (e *Environment) removeIntegerNode(n *IntegerHashNode) {
	prev := &e.integerTable[n.bucket]
	for *prev != nil {
		if *prev == n {
			*prev = n.next
			return
		}
		prev = &(*prev).next
	}
	e.systemError("SYMBOL", 7)
}

/* Bitmaps */

// AddBitMap interns a copy of contents in the bitmap table.
func (e *Environment) AddBitMap(contents []byte) *BitMapHashNode {
	tally := hashBitMap(contents, bitMapHashSize)
	for peek := e.bitMapTable[tally]; peek != nil; peek = peek.next {
		if bytesEqual(peek.Contents, contents) {
			return peek
		}
	}

	owned := make([]byte, len(contents))
	copy(owned, contents)
	peek := &BitMapHashNode{
		Contents: owned,
		bucket:   tally,
		next:     e.bitMapTable[tally],
	}
	e.bitMapTable[tally] = peek
	e.addEphemeralBitMap(peek)
	return peek
}

// FindBitMap returns the interned node for contents, or nil.
func (e *Environment) FindBitMap(contents []byte) *BitMapHashNode {
	tally := hashBitMap(contents, bitMapHashSize)
	for peek := e.bitMapTable[tally]; peek != nil; peek = peek.next {
		if bytesEqual(peek.Contents, contents) {
			return peek
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IncrementBitMapCount adds a persistent reference to n.
func (e *Environment) IncrementBitMapCount(n *BitMapHashNode) { n.count++ }

// DecrementBitMapCount removes a persistent reference from n.
func (e *Environment) DecrementBitMapCount(n *BitMapHashNode) {
	if n.count == 0 {
		e.systemError("SYMBOL", 8)
	}
	n.count--
	if n.count == 0 && !n.markedEphemeral {
		e.addEphemeralBitMap(n)
	}
}

func (e *Environment) addEphemeralBitMap(n *BitMapHashNode) {
	n.markedEphemeral = true
	f := e.currentGarbageFrame
	f.ephemeralBitMaps = &ephemeron{value: n, next: f.ephemeralBitMaps}
}

func (e *Environment) removeBitMapNode(n *BitMapHashNode) {
	prev := &e.bitMapTable[n.bucket]
	for *prev != nil {
		if *prev == n {
			*prev = n.next
			return
		}
		prev = &(*prev).next
	}
	e.systemError("SYMBOL", 9)
}

/* External addresses */

// AddExternalAddress interns the (kind, address) pair in the external
// address table.
func (e *Environment) AddExternalAddress(address interface{}, kind int) *ExternalAddressHashNode {
	tally := hashExternalAddress(address, externalAddressHashSize)
	for peek := e.externalAddressTable[tally]; peek != nil; peek = peek.next {
		if peek.Address == address && peek.Type == kind {
			return peek
		}
	}

	peek := &ExternalAddressHashNode{
		Address: address,
		Type:    kind,
		bucket:  tally,
		next:    e.externalAddressTable[tally],
	}
	e.externalAddressTable[tally] = peek
	e.addEphemeralExtern(peek)
	return peek
}

// IncrementExternalAddressCount adds a persistent reference to n.
func (e *Environment) IncrementExternalAddressCount(n *ExternalAddressHashNode) { n.count++ }

// DecrementExternalAddressCount removes a persistent reference from n.
func (e *Environment) DecrementExternalAddressCount(n *ExternalAddressHashNode) {
	if n.count == 0 {
		e.systemError("SYMBOL", 10)
	}
	n.count--
	if n.count == 0 && !n.markedEphemeral {
		e.addEphemeralExtern(n)
	}
}

func (e *Environment) addEphemeralExtern(n *ExternalAddressHashNode) {
	n.markedEphemeral = true
	f := e.currentGarbageFrame
	f.ephemeralExterns = &ephemeron{value: n, next: f.ephemeralExterns}
}

func (e *Environment) removeExternNode(n *ExternalAddressHashNode) {
	prev := &e.externalAddressTable[n.bucket]
	for *prev != nil {
		if *prev == n {
			*prev = n.next
			return
		}
		prev = &(*prev).next
	}
	e.systemError("SYMBOL", 11)
}

// InstallExternalAddressType registers t and returns the type code to pass
// to AddExternalAddress.
func (e *Environment) InstallExternalAddressType(t *ExternalAddressType) int {
	e.externalAddressTypes = append(e.externalAddressTypes, t)
	return len(e.externalAddressTypes) - 1
}

/* Sweeping */

// RemoveEphemeralAtoms sweeps the current garbage frame.  Entries still at
// count zero are unlinked from their tables; entries that gained a
// reference have their ephemeral mark cleared and are dropped from the
// frame.  Permanent seed atoms are never removed.
func (e *Environment) RemoveEphemeralAtoms() {
	f := e.currentGarbageFrame
	e.sweepFrame(f)
}

func (e *Environment) sweepFrame(f *garbageFrame) {
	for ep := f.ephemeralSymbols; ep != nil; ep = ep.next {
		n := ep.value.(*SymbolHashNode)
		if n.count == 0 && !n.permanent {
			e.removeSymbolNode(n)
		} else {
			n.markedEphemeral = false
		}
	}
	f.ephemeralSymbols = nil

	for ep := f.ephemeralFloats; ep != nil; ep = ep.next {
		n := ep.value.(*FloatHashNode)
		if n.count == 0 && !n.permanent {
			e.removeFloatNode(n)
		} else {
			n.markedEphemeral = false
		}
	}
	f.ephemeralFloats = nil

	for ep := f.ephemeralIntegers; ep != nil; ep = ep.next {
		n := ep.value.(*IntegerHashNode)
		if n.count == 0 && !n.permanent {
			e.removeIntegerNode(n)
		} else {
			n.markedEphemeral = false
		}
	}
	f.ephemeralIntegers = nil

	for ep := f.ephemeralBitMaps; ep != nil; ep = ep.next {
		n := ep.value.(*BitMapHashNode)
		if n.count == 0 && !n.permanent {
			e.removeBitMapNode(n)
		} else {
			n.markedEphemeral = false
		}
	}
	f.ephemeralBitMaps = nil

	for ep := f.ephemeralExterns; ep != nil; ep = ep.next {
		n := ep.value.(*ExternalAddressHashNode)
		if n.count == 0 {
			e.removeExternNode(n)
			if t := e.externalAddressType(n.Type); t != nil && t.Discard != nil {
				t.Discard(e, n)
			}
		} else {
			n.markedEphemeral = false
		}
	}
	f.ephemeralExterns = nil
}

func (e *Environment) externalAddressType(code int) *ExternalAddressType {
	if code < 0 || code >= len(e.externalAddressTypes) {
		return nil
	}
	return e.externalAddressTypes[code]
}

// PushGarbageFrame starts a new garbage frame.  Atoms that become
// ephemeral while the frame is current are reclaimed when the frame is
// popped.
func (e *Environment) PushGarbageFrame() {
	e.currentGarbageFrame = &garbageFrame{prior: e.currentGarbageFrame}
}

// PopGarbageFrame sweeps and discards the current frame, restoring its
// parent.  The outermost frame cannot be popped; it is swept in place.
func (e *Environment) PopGarbageFrame() {
	f := e.currentGarbageFrame
	e.sweepFrame(f)
	if f.prior != nil {
		e.currentGarbageFrame = f.prior
	}
}

// incrementAtomCount adds a persistent reference to any interned atom
// referenced by an expression node value.  Unhashed values are ignored.
func (e *Environment) incrementAtomCount(kind Kind, value interface{}) {
	switch kind {
	case Symbol, String, InstanceName, GblVariable, MFGblVariable,
		SFVariable, MFVariable, SFWildcard, MFWildcard, Bind:
		if n, ok := value.(*SymbolHashNode); ok {
			e.IncrementSymbolCount(n)
		}
	case Float:
		if n, ok := value.(*FloatHashNode); ok {
			e.IncrementFloatCount(n)
		}
	case Integer:
		if n, ok := value.(*IntegerHashNode); ok {
			e.IncrementIntegerCount(n)
		}
	case ExternalAddress:
		if n, ok := value.(*ExternalAddressHashNode); ok {
			e.IncrementExternalAddressCount(n)
		}
	}
}

func (e *Environment) decrementAtomCount(kind Kind, value interface{}) {
	switch kind {
	case Symbol, String, InstanceName, GblVariable, MFGblVariable,
		SFVariable, MFVariable, SFWildcard, MFWildcard, Bind:
		if n, ok := value.(*SymbolHashNode); ok {
			e.DecrementSymbolCount(n)
		}
	case Float:
		if n, ok := value.(*FloatHashNode); ok {
			e.DecrementFloatCount(n)
		}
	case Integer:
		if n, ok := value.(*IntegerHashNode); ok {
			e.DecrementIntegerCount(n)
		}
	case ExternalAddress:
		if n, ok := value.(*ExternalAddressHashNode); ok {
			e.DecrementExternalAddressCount(n)
		}
	}
}
