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

// This file implements the module system: defmodule parsing, import and
// export port specifications, construct visibility, and multi-import
// conflict detection.  The MAIN module is predefined and may be redefined
// exactly once, while it still has no imports or exports.

// A PortItem is one entry of an import or export list.  A nil
// ConstructType or ConstructName means "all".  ModuleName is the exporting
// module for import entries and nil for export entries.
type PortItem struct {
	ModuleName    *SymbolHashNode
	ConstructType *SymbolHashNode
	ConstructName *SymbolHashNode
	Next          *PortItem
}

// A Defmodule is a named namespace with explicit import and export port
// specifications.
type Defmodule struct {
	Name       *SymbolHashNode
	PPForm     string
	ImportList *PortItem
	ExportList *PortItem

	// Constructs defined in this module, keyed by construct type then
	// construct name.
	items map[string]map[string]bool
}

// GetDefmoduleName returns the module's name.
func (m *Defmodule) GetDefmoduleName() string { return m.Name.Contents }

// A PortConstructItem names a construct type that can appear in port
// specifications, along with the token kind its construct names use.
type PortConstructItem struct {
	ConstructName string
	TypeExpected  Kind
}

// A Construct is a registered construct type whose definitions are tracked
// per module for visibility checks.
type Construct struct {
	Name string
}

// initializeDefmodules creates the predefined MAIN module.
func (e *Environment) initializeDefmodules() {
	main := e.newDefmodule("MAIN")
	e.listOfDefmodules = append(e.listOfDefmodules, main)
	e.currentModule = main
	e.mainModuleRedefinable = true
}

func (e *Environment) newDefmodule(name string) *Defmodule {
	sym := e.AddSymbol(name)
	e.IncrementSymbolCount(sym)
	return &Defmodule{Name: sym, items: map[string]map[string]bool{}}
}

// FindDefmodule returns the module named name, or nil.
func (e *Environment) FindDefmodule(name string) *Defmodule {
	for _, m := range e.listOfDefmodules {
		if m.Name.Contents == name {
			return m
		}
	}
	return nil
}

// GetNextDefmodule iterates over the module list; passing nil returns the
// first module.
func (e *Environment) GetNextDefmodule(prev *Defmodule) *Defmodule {
	if prev == nil {
		if len(e.listOfDefmodules) == 0 {
			return nil
		}
		return e.listOfDefmodules[0]
	}
	for i, m := range e.listOfDefmodules {
		if m == prev && i+1 < len(e.listOfDefmodules) {
			return e.listOfDefmodules[i+1]
		}
	}
	return nil
}

// GetCurrentModule returns the module new constructs are defined in.
func (e *Environment) GetCurrentModule() *Defmodule { return e.currentModule }

// SetCurrentModule makes m the current module and returns the previous
// one.
func (e *Environment) SetCurrentModule(m *Defmodule) *Defmodule {
	old := e.currentModule
	e.currentModule = m
	return old
}

func (e *Environment) saveCurrentModule() {
	e.savedModules = append(e.savedModules, e.currentModule)
}

func (e *Environment) restoreCurrentModule() {
	e.currentModule = e.savedModules[len(e.savedModules)-1]
	e.savedModules = e.savedModules[:len(e.savedModules)-1]
}

// AddAfterModuleDefinedFunction registers fn to run after each new module
// is defined.
func (e *Environment) AddAfterModuleDefinedFunction(fn func(*Environment)) {
	e.afterModuleDefined = append(e.afterModuleDefined, fn)
}

// AddPortConstructItem declares that constructs of the named type may
// appear in import and export specifications, with construct names scanned
// as the given token kind.
func (e *Environment) AddPortConstructItem(constructName string, typeExpected Kind) {
	e.portConstructItems = append(e.portConstructItems,
		&PortConstructItem{ConstructName: constructName, TypeExpected: typeExpected})
	if _, ok := e.constructs[constructName]; !ok {
		e.constructs[constructName] = &Construct{Name: constructName}
	}
}

// ValidPortConstructItem returns the port construct item registered under
// theName, or nil.
func (e *Environment) ValidPortConstructItem(theName string) *PortConstructItem {
	for _, item := range e.portConstructItems {
		if item.ConstructName == theName {
			return item
		}
	}
	return nil
}

// FindConstruct returns the construct type registered under name, or nil.
func (e *Environment) FindConstruct(name string) *Construct {
	return e.constructs[name]
}

// DefineConstruct records a construct of the given type and name in the
// current module.  False is returned when defining it would create an
// import/export conflict in some module.
func (e *Environment) DefineConstruct(constructType, name string) bool {
	if e.FindConstruct(constructType) == nil {
		e.constructs[constructType] = &Construct{Name: constructType}
	}
	if e.FindImportExportConflict(constructType, e.currentModule, name) {
		e.importExportConflictMessage(constructType, name, "", "")
		return false
	}
	m := e.currentModule
	if m.items[constructType] == nil {
		m.items[constructType] = map[string]bool{}
	}
	m.items[constructType][name] = true
	return true
}

// constructDefined reports whether module m itself defines the construct.
func constructDefined(m *Defmodule, constructType, name string) bool {
	return m.items[constructType][name]
}

// constructsOfType returns the names of every construct of the given type
// defined in m.
func constructsOfType(m *Defmodule, constructType string) []string {
	var names []string
	for name := range m.items[constructType] {
		names = append(names, name)
	}
	return names
}

// exportsConstruct reports whether m's export list covers the construct.
func exportsConstruct(m *Defmodule, constructType, name string) bool {
	for port := m.ExportList; port != nil; port = port.Next {
		if port.ConstructType == nil {
			return true
		}
		if port.ConstructType.Contents != constructType {
			continue
		}
		if port.ConstructName == nil || port.ConstructName.Contents == name {
			return true
		}
	}
	return false
}

// FindImportedConstruct resolves the construct of the given type and name
// visible from the current module.  theModule restricts the search to
// imports from that module when non-nil.  count receives the number of
// distinct modules supplying a visible definition; a count above one is an
// ambiguous reference.  When searchCurrent is set the current module's own
// definitions are considered.  matchModule, when non-nil, only counts
// definitions in that module.
func (e *Environment) FindImportedConstruct(constructName string, theModule *Defmodule, findName string, searchCurrent bool, matchModule *Defmodule) (*Defmodule, int) {
	var found *Defmodule
	count := 0
	current := e.currentModule

	if searchCurrent && (matchModule == nil || matchModule == current) &&
		constructDefined(current, constructName, findName) {
		found = current
		count++
	}

	counted := map[*Defmodule]bool{current: true}
	for port := current.ImportList; port != nil; port = port.Next {
		if theModule != nil && port.ModuleName != theModule.Name {
			continue
		}
		if port.ConstructType != nil && port.ConstructType.Contents != constructName {
			continue
		}
		if port.ConstructName != nil && port.ConstructName.Contents != findName {
			continue
		}
		src := e.FindDefmodule(port.ModuleName.Contents)
		if src == nil || counted[src] {
			continue
		}
		if matchModule != nil && src != matchModule {
			continue
		}
		if exportsConstruct(src, constructName, findName) &&
			constructDefined(src, constructName, findName) {
			counted[src] = true
			found = src
			count++
		}
	}

	return found, count
}

// FindImportExportConflict determines whether defining a construct of the
// given type and name in matchModule would make the name ambiguous in any
// module.  The construct is not yet defined when this is called.
func (e *Environment) FindImportExportConflict(constructName string, matchModule *Defmodule, findName string) bool {
	if e.ValidPortConstructItem(constructName) == nil {
		return false
	}

	e.saveCurrentModule()
	defer e.restoreCurrentModule()

	for _, theModule := range e.listOfDefmodules {
		e.SetCurrentModule(theModule)
		// Count existing visible definitions, then add the one about to
		// be defined if it would be visible here.
		_, count := e.FindImportedConstruct(constructName, nil, findName, true, nil)
		if count == 0 {
			continue
		}
		if theModule == matchModule {
			count++
		} else if visible := e.moduleWouldSee(theModule, matchModule, constructName, findName); visible {
			count++
		}
		if count > 1 {
			return true
		}
	}
	return false
}

// moduleWouldSee reports whether observer would see a construct of the
// given type and name once defined in owner, assuming owner exports it.
func (e *Environment) moduleWouldSee(observer, owner *Defmodule, constructName, findName string) bool {
	if owner == nil || observer == owner {
		return false
	}
	for port := observer.ImportList; port != nil; port = port.Next {
		if port.ModuleName != owner.Name {
			continue
		}
		if port.ConstructType != nil && port.ConstructType.Contents != constructName {
			continue
		}
		if port.ConstructName != nil && port.ConstructName.Contents != findName {
			continue
		}
		if exportsConstruct(owner, constructName, findName) {
			return true
		}
	}
	return false
}

// ParseDefmodule parses a defmodule construct from readSource; the
// defmodule keyword has already been read.  True is returned on error; the
// module state is left unchanged in that case.
func (e *Environment) ParseDefmodule(readSource string) bool {
	e.SetPPBufferStatus(true)
	e.FlushPPBuffer()
	e.SetIndentDepth(3)
	e.SavePPBuffer("(defmodule ")

	// Parse the name and optional comment.
	theToken := e.GetToken(readSource)
	if theToken.Kind != Symbol {
		e.syntaxErrorMessage("defmodule")
		return true
	}
	defmoduleName := theToken.SymbolValue()

	var redefiningMainModule *Defmodule
	existing := e.FindDefmodule(defmoduleName.Contents)
	if existing != nil {
		if defmoduleName.Contents == "MAIN" && e.mainModuleRedefinable {
			redefiningMainModule = existing
		} else {
			e.printErrorID("PRNTUTIL", 3, true)
			e.PrintRouter(WERROR, "Cannot redefine defmodule "+defmoduleName.Contents+" while it is in use.\n")
			return true
		}
	}

	e.PPCRAndIndent()

	// An optional comment string may follow the name.
	theToken = e.GetToken(readSource)
	if theToken.Kind == String {
		e.PPCRAndIndent()
		theToken = e.GetToken(readSource)
	}

	newDefmodule := redefiningMainModule
	if newDefmodule == nil {
		newDefmodule = e.newDefmodule(defmoduleName.Contents)
	}

	oldImportList := newDefmodule.ImportList
	oldExportList := newDefmodule.ExportList
	newDefmodule.ImportList = nil
	newDefmodule.ExportList = nil

	// Parse the import/export specifications.
	parseError := e.parsePortSpecifications(readSource, theToken, newDefmodule)

	// Check for ambiguous references introduced by the new ports.
	if !parseError {
		e.withModuleInstalled(newDefmodule, redefiningMainModule == nil, func() {
			parseError = e.findMultiImportConflict(newDefmodule)
		})
	}

	// Abort the definition on any failure, restoring the prior state.
	if parseError {
		newDefmodule.ImportList = oldImportList
		newDefmodule.ExportList = oldExportList
		return true
	}

	// Commit: reference the symbols used by the port specifications.
	if redefiningMainModule == nil {
		e.listOfDefmodules = append(e.listOfDefmodules, newDefmodule)
	} else {
		e.mainModuleRedefinable = false
	}

	for _, portSpecs := range []*PortItem{newDefmodule.ImportList, newDefmodule.ExportList} {
		for port := portSpecs; port != nil; port = port.Next {
			if port.ModuleName != nil {
				e.IncrementSymbolCount(port.ModuleName)
			}
			if port.ConstructType != nil {
				e.IncrementSymbolCount(port.ConstructType)
			}
			if port.ConstructName != nil {
				e.IncrementSymbolCount(port.ConstructName)
			}
		}
	}

	e.SavePPBuffer("\n")
	newDefmodule.PPForm = e.CopyPPBuffer()

	e.SetCurrentModule(newDefmodule)
	for _, fn := range e.afterModuleDefined {
		fn(e)
	}

	return false
}

// withModuleInstalled runs fn with m temporarily present in the module
// list, so visibility scans can see a module still being parsed.
func (e *Environment) withModuleInstalled(m *Defmodule, install bool, fn func()) {
	if install {
		e.listOfDefmodules = append(e.listOfDefmodules, m)
		defer func() {
			e.listOfDefmodules = e.listOfDefmodules[:len(e.listOfDefmodules)-1]
		}()
	}
	fn()
}

// parsePortSpecifications parses import and export specifications until
// the defmodule's closing right parenthesis.
func (e *Environment) parsePortSpecifications(readSource string, theToken *Token, theDefmodule *Defmodule) bool {
	for theToken.Kind != RParen {
		if theToken.Kind != LParen {
			e.syntaxErrorMessage("defmodule")
			return true
		}

		tok := e.GetToken(readSource)
		if tok.Kind != Symbol {
			e.syntaxErrorMessage("defmodule")
			return true
		}

		var parseError bool
		switch tok.SymbolValue().Contents {
		case "import":
			parseError = e.parseImportSpec(readSource, theDefmodule)
		case "export":
			parseError = e.parseExportSpec(readSource, theDefmodule, nil)
		default:
			e.syntaxErrorMessage("defmodule")
			return true
		}
		if parseError {
			return true
		}

		e.PPCRAndIndent()
		theToken = e.GetToken(readSource)
		if theToken.Kind == RParen {
			e.PPBackup()
			e.PPBackup()
			e.SavePPBuffer(")")
		}
	}
	return false
}

// parseImportSpec parses one import specification:
//
//	<import-spec> ::= (import <module-name> <port-item>)
//	<port-item>   ::= ?ALL | ?NONE |
//	                  <construct-type> ?ALL |
//	                  <construct-type> ?NONE |
//	                  <construct-type> <names>+
func (e *Environment) parseImportSpec(readSource string, newModule *Defmodule) bool {
	e.SavePPBuffer(" ")
	theToken := e.GetToken(readSource)
	if theToken.Kind != Symbol {
		e.syntaxErrorMessage("defmodule import specification")
		return true
	}

	theModule := e.FindDefmodule(theToken.SymbolValue().Contents)
	if theModule == nil {
		e.cantFindItemErrorMessage("defmodule", theToken.SymbolValue().Contents)
		return true
	}

	// An import from a module exporting nothing is meaningless.
	if theModule.ExportList == nil {
		e.notExportedErrorMessage(theModule.GetDefmoduleName(), "", "")
		return true
	}

	oldImportSpec := newModule.ImportList
	if e.parseExportSpec(readSource, newModule, theModule) {
		return true
	}

	// ?NONE imported nothing; there is nothing further to validate.
	if newModule.ImportList == oldImportSpec {
		return false
	}

	// The imported construct type must be coverable by the exporting
	// module's export list.  This does not yet require a specific named
	// construct to exist.
	if newModule.ImportList.ConstructType != nil {
		found := false
		for port := theModule.ExportList; port != nil && !found; port = port.Next {
			if port.ConstructType == nil {
				found = true
			} else if port.ConstructType == newModule.ImportList.ConstructType {
				if newModule.ImportList.ConstructName == nil ||
					port.ConstructName == nil ||
					port.ConstructName == newModule.ImportList.ConstructName {
					found = true
				}
			}
		}
		if !found {
			ctype := newModule.ImportList.ConstructType.Contents
			cname := ""
			if newModule.ImportList.ConstructName != nil {
				cname = newModule.ImportList.ConstructName.Contents
			}
			e.notExportedErrorMessage(theModule.GetDefmoduleName(), ctype, cname)
			return true
		}
	}

	// Specifically named constructs must actually exist and be visible
	// from the exporting module.
	e.saveCurrentModule()
	defer e.restoreCurrentModule()

	for port := newModule.ImportList; port != nil; port = port.Next {
		if port.ConstructType == nil || port.ConstructName == nil {
			continue
		}
		src := e.FindDefmodule(port.ModuleName.Contents)
		e.SetCurrentModule(src)
		if _, count := e.FindImportedConstruct(port.ConstructType.Contents, nil,
			port.ConstructName.Contents, true, nil); count == 0 {
			e.notExportedErrorMessage(src.GetDefmoduleName(),
				port.ConstructType.Contents, port.ConstructName.Contents)
			return true
		}
	}

	return false
}

// parseExportSpec parses an export specification, or the remainder of an
// import specification after the module name when importModule is
// non-nil.
func (e *Environment) parseExportSpec(readSource string, newModule, importModule *Defmodule) bool {
	var errorMessage string
	var moduleName *SymbolHashNode
	if importModule != nil {
		errorMessage = "defmodule import specification"
		moduleName = importModule.Name
	} else {
		errorMessage = "defmodule export specification"
	}

	addPort := func(newPort *PortItem) {
		if importModule != nil {
			newPort.Next = newModule.ImportList
			newModule.ImportList = newPort
		} else {
			newPort.Next = newModule.ExportList
			newModule.ExportList = newPort
		}
	}

	// ?ALL and ?NONE may replace the whole item list.
	e.SavePPBuffer(" ")
	theToken := e.GetToken(readSource)

	if theToken.Kind == SFVariable {
		var newPort *PortItem
		switch theToken.SymbolValue().Contents {
		case "ALL":
			newPort = &PortItem{ModuleName: moduleName}
		case "NONE":
		default:
			e.syntaxErrorMessage(errorMessage)
			return true
		}

		if theToken = e.GetToken(readSource); theToken.Kind != RParen {
			e.PPBackup()
			e.SavePPBuffer(" ")
			e.SavePPBuffer(theToken.PrintForm)
			e.syntaxErrorMessage(errorMessage)
			return true
		}

		if newPort != nil {
			addPort(newPort)
		}
		return false
	}

	// Otherwise the token names an importable construct type.
	if theToken.Kind != Symbol {
		e.syntaxErrorMessage(errorMessage)
		return true
	}
	theConstruct := theToken.SymbolValue()
	thePortConstruct := e.ValidPortConstructItem(theConstruct.Contents)
	if thePortConstruct == nil {
		e.syntaxErrorMessage(errorMessage)
		return true
	}

	// ?ALL and ?NONE may also follow the construct type.
	e.SavePPBuffer(" ")
	theToken = e.GetToken(readSource)

	if theToken.Kind == SFVariable {
		var newPort *PortItem
		switch theToken.SymbolValue().Contents {
		case "ALL":
			newPort = &PortItem{ModuleName: moduleName, ConstructType: theConstruct}
		case "NONE":
		default:
			e.syntaxErrorMessage(errorMessage)
			return true
		}

		if theToken = e.GetToken(readSource); theToken.Kind != RParen {
			e.PPBackup()
			e.SavePPBuffer(" ")
			e.SavePPBuffer(theToken.PrintForm)
			e.syntaxErrorMessage(errorMessage)
			return true
		}

		if newPort != nil {
			addPort(newPort)
		}
		return false
	}

	// There must be at least one named construct at this point.
	if theToken.Kind == RParen {
		e.syntaxErrorMessage(errorMessage)
		return true
	}

	for theToken.Kind != RParen {
		if theToken.Kind != thePortConstruct.TypeExpected {
			e.syntaxErrorMessage(errorMessage)
			return true
		}

		addPort(&PortItem{
			ModuleName:    moduleName,
			ConstructType: theConstruct,
			ConstructName: theToken.SymbolValue(),
		})

		e.SavePPBuffer(" ")
		theToken = e.GetToken(readSource)
	}

	e.PPBackup()
	e.PPBackup()
	e.SavePPBuffer(")")

	return false
}

// findMultiImportConflict determines whether theModule imports the same
// named construct from more than one module.
func (e *Environment) findMultiImportConflict(theModule *Defmodule) bool {
	e.saveCurrentModule()
	defer e.restoreCurrentModule()

	for _, testModule := range e.listOfDefmodules {
		for _, thePCItem := range e.portConstructItems {
			if e.HaltExecution {
				return true
			}
			for _, name := range constructsOfType(testModule, thePCItem.ConstructName) {
				e.SetCurrentModule(theModule)
				if _, count := e.FindImportedConstruct(thePCItem.ConstructName, nil,
					name, false, nil); count > 1 {
					e.importExportConflictMessage("defmodule",
						theModule.GetDefmoduleName(), thePCItem.ConstructName, name)
					return true
				}
			}
		}
	}
	return false
}

// notExportedErrorMessage reports that a module does not export a
// construct type or a specific named construct.
func (e *Environment) notExportedErrorMessage(theModule, theConstruct, theName string) {
	e.printErrorID("MODULPSR", 1, true)
	msg := "Module " + theModule + " does not export "
	switch {
	case theConstruct == "":
		msg += "any constructs"
	case theName == "":
		msg += "any " + theConstruct + " constructs"
	default:
		msg += "the " + theConstruct + " " + theName
	}
	e.PrintRouter(WERROR, msg+".\n")
}

// importExportConflictMessage reports an ambiguous construct reference.
func (e *Environment) importExportConflictMessage(constructName, itemName, causedByConstruct, causedByName string) {
	e.printErrorID("CSTRCPSR", 3, true)
	msg := "Cannot define " + constructName + " " + itemName + " because of an import/export conflict"
	if causedByConstruct != "" {
		msg += " caused by the " + causedByConstruct + " " + causedByName
	}
	e.PrintRouter(WERROR, msg+".\n")
}
