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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/openconfig/gnmi/errdiff"
)

// parseModule feeds one defmodule construct to the parser, returning
// whether parsing failed and anything written to the error channels.
func parseModule(t *testing.T, e *Environment, src string) (bool, string) {
	t.Helper()
	const router = "module-test"

	errbuf := &bytes.Buffer{}
	e.SetErrorWriter(errbuf)
	e.OpenStringSource(router, src)
	defer e.CloseStringSource(router)

	if tok := e.GetToken(router); tok.Kind != LParen {
		t.Fatalf("module source %q: got %v, want (", src, tok.Kind)
	}
	if tok := e.GetToken(router); tok.Kind != Symbol || tok.SymbolValue().Contents != "defmodule" {
		t.Fatalf("module source %q: missing defmodule keyword", src)
	}
	return e.ParseDefmodule(router), errbuf.String()
}

// newModuleTestEnv returns an environment with the deftemplate construct
// type registered as portable.
func newModuleTestEnv() *Environment {
	e := NewEnvironment()
	e.AddPortConstructItem("deftemplate", Symbol)
	return e
}

func TestParseDefmodule(t *testing.T) {
	for _, tt := range []struct {
		line          int
		setup         func(e *Environment)
		in            string
		wantErrSubstr string
	}{
		{
			line: line(),
			in:   `(defmodule FOO "a module" (export ?ALL))`,
		},
		{
			line: line(),
			in:   `(defmodule FOO (export deftemplate ?ALL))`,
		},
		{
			line: line(),
			in:   `(defmodule FOO (export deftemplate ?NONE))`,
		},
		{
			line: line(),
			setup: func(e *Environment) {
				mustParseModule(t, e, `(defmodule FOO (export deftemplate ?ALL))`)
			},
			in: `(defmodule BAR (import FOO ?ALL))`,
		},
		{
			line: line(),
			setup: func(e *Environment) {
				mustParseModule(t, e, `(defmodule FOO (export deftemplate ?ALL))`)
			},
			in: `(defmodule BAR (import FOO deftemplate ?NONE))`,
		},
		{
			line:          line(),
			in:            `(defmodule BAR (import MAIN ?ALL))`,
			wantErrSubstr: "Module MAIN does not export any constructs",
		},
		{
			line: line(),
			setup: func(e *Environment) {
				mustParseModule(t, e, `(defmodule FOO (export deftemplate ?ALL))`)
			},
			in:            `(defmodule BAR (import FOO deftemplate missing))`,
			wantErrSubstr: "does not export the deftemplate missing",
		},
		{
			line: line(),
			setup: func(e *Environment) {
				mustParseModule(t, e, `(defmodule FOO (export deftemplate point))`)
				e.DefineConstruct("deftemplate", "point")
			},
			in: `(defmodule BAR (import FOO deftemplate point))`,
		},
		{
			line: line(),
			setup: func(e *Environment) {
				mustParseModule(t, e, `(defmodule FOO (export deftemplate point))`)
				e.DefineConstruct("deftemplate", "point")
				e.DefineConstruct("deftemplate", "edge")
			},
			in:            `(defmodule BAR (import FOO deftemplate edge))`,
			wantErrSubstr: "does not export the deftemplate edge",
		},
		{
			line:          line(),
			in:            `(defmodule BAR (import NOWHERE ?ALL))`,
			wantErrSubstr: "Unable to find defmodule NOWHERE",
		},
		{
			line:          line(),
			in:            `(defmodule BAR (borrow MAIN ?ALL))`,
			wantErrSubstr: "Syntax Error",
		},
		{
			line:          line(),
			in:            `(defmodule BAR (export deftemplate))`,
			wantErrSubstr: "Syntax Error",
		},
		{
			line:          line(),
			in:            `(defmodule BAR (export widget ?ALL))`,
			wantErrSubstr: "Syntax Error",
		},
	} {
		e := newModuleTestEnv()
		if tt.setup != nil {
			tt.setup(e)
		}
		parseError, errout := parseModule(t, e, tt.in)

		var err error
		if errout != "" {
			err = errors.New(errout)
		}
		if diff := errdiff.Substring(err, tt.wantErrSubstr); diff != "" {
			t.Errorf("%d: %s", tt.line, diff)
			continue
		}
		if parseError != (tt.wantErrSubstr != "") {
			t.Errorf("%d: parseError = %v, want %v", tt.line, parseError, tt.wantErrSubstr != "")
		}
	}
}

func mustParseModule(t *testing.T, e *Environment, src string) {
	t.Helper()
	if parseError, errout := parseModule(t, e, src); parseError {
		t.Fatalf("setup module %q failed: %s", src, errout)
	}
}

// A defmodule importing the same named construct from two modules is
// rejected, and the module state is rolled back.
func TestMultiImportConflict(t *testing.T) {
	e := newModuleTestEnv()

	mustParseModule(t, e, `(defmodule A (export deftemplate ?ALL))`)
	if !e.DefineConstruct("deftemplate", "point") {
		t.Fatal("defining point in A failed")
	}
	mustParseModule(t, e, `(defmodule B (export deftemplate ?ALL))`)
	if !e.DefineConstruct("deftemplate", "point") {
		t.Fatal("defining point in B failed")
	}

	parseError, errout := parseModule(t, e,
		`(defmodule C (import A deftemplate ?ALL) (import B deftemplate ?ALL))`)
	if !parseError {
		t.Fatal("multi-import conflict not detected")
	}
	if !strings.Contains(errout, "import/export conflict") {
		t.Errorf("got error output %q, want an import/export conflict message", errout)
	}

	// The failed module must not remain defined.
	if e.FindDefmodule("C") != nil {
		t.Errorf("failed defmodule C was left defined")
	}
}

// Defining a construct that would become ambiguous in some module is
// rejected.
func TestDefineConstructConflict(t *testing.T) {
	e := newModuleTestEnv()

	mustParseModule(t, e, `(defmodule A (export deftemplate ?ALL))`)
	if !e.DefineConstruct("deftemplate", "point") {
		t.Fatal("defining point in A failed")
	}
	mustParseModule(t, e, `(defmodule B (export deftemplate ?ALL))`)
	mustParseModule(t, e, `(defmodule C (import A deftemplate ?ALL) (import B deftemplate ?ALL))`)

	// A point defined in B would now be visible in C alongside A's.
	e.SetCurrentModule(e.FindDefmodule("B"))
	e.SetErrorWriter(&bytes.Buffer{})
	if e.DefineConstruct("deftemplate", "point") {
		t.Errorf("conflicting construct definition was allowed")
	}
}

func TestMainModuleRedefinition(t *testing.T) {
	e := newModuleTestEnv()

	// MAIN is redefinable exactly once.
	parseError, errout := parseModule(t, e, `(defmodule MAIN (export deftemplate ?ALL))`)
	if parseError {
		t.Fatalf("first MAIN redefinition failed: %s", errout)
	}
	if e.FindDefmodule("MAIN").ExportList == nil {
		t.Fatal("MAIN redefinition lost its export list")
	}

	parseError, errout = parseModule(t, e, `(defmodule MAIN (export deftemplate ?ALL))`)
	if !parseError {
		t.Fatal("second MAIN redefinition was allowed")
	}
	if !strings.Contains(errout, "Cannot redefine defmodule MAIN") {
		t.Errorf("got error output %q, want a redefinition diagnostic", errout)
	}
}

func TestVisibility(t *testing.T) {
	e := newModuleTestEnv()

	mustParseModule(t, e, `(defmodule A (export deftemplate ?ALL))`)
	e.DefineConstruct("deftemplate", "point")
	mustParseModule(t, e, `(defmodule B (import A deftemplate ?ALL))`)

	// Visible from B through its import.
	found, count := e.FindImportedConstruct("deftemplate", nil, "point", true, nil)
	if count != 1 || found != e.FindDefmodule("A") {
		t.Errorf("got (%v, %d), want point visible from A exactly once", found, count)
	}

	// Not visible from MAIN, which imports nothing.
	e.SetCurrentModule(e.FindDefmodule("MAIN"))
	if _, count = e.FindImportedConstruct("deftemplate", nil, "point", true, nil); count != 0 {
		t.Errorf("got count %d from MAIN, want 0", count)
	}
}

func TestCurrentModuleSaveRestore(t *testing.T) {
	e := newModuleTestEnv()
	main := e.GetCurrentModule()

	mustParseModule(t, e, `(defmodule A (export deftemplate ?ALL))`)
	if e.GetCurrentModule().GetDefmoduleName() != "A" {
		t.Fatal("defmodule did not become current")
	}

	old := e.SetCurrentModule(main)
	if old.GetDefmoduleName() != "A" || e.GetCurrentModule() != main {
		t.Errorf("SetCurrentModule did not swap modules")
	}
}
