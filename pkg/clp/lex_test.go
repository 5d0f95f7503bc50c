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
	"runtime"
	"strings"
	"testing"
)

// line returns the line number from which it was called.  Used to mark
// where test entries are in the source.
func line() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

// A wantToken is the kind and print form a scanned token should have.
type wantToken struct {
	kind Kind
	text string
}

// T creates a new wantToken from the provided kind and print form.
func T(kind Kind, text string) wantToken { return wantToken{kind: kind, text: text} }

// tokenize scans source to exhaustion, returning everything before the
// Stop token.
func tokenize(e *Environment, source string) []*Token {
	const router = "lex-test"
	e.OpenStringSource(router, source)
	defer e.CloseStringSource(router)

	var tokens []*Token
	for {
		tok := e.GetToken(router)
		if tok.Kind == Stop {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func TestGetToken(t *testing.T) {
Tests:
	for _, tt := range []struct {
		line   int
		in     string
		tokens []wantToken
	}{
		{line(), "", nil},
		{line(), "bob", []wantToken{
			T(Symbol, "bob"),
		}},
		{line(), "(foo 1 2.5 \"hi\" ?x)", []wantToken{
			T(LParen, "("),
			T(Symbol, "foo"),
			T(Integer, "1"),
			T(Float, "2.5"),
			T(String, `"hi"`),
			T(SFVariable, "?x"),
			T(RParen, ")"),
		}},
		{line(), "[oven-1]", []wantToken{
			T(InstanceName, "oven-1"),
		}},
		{line(), "?", []wantToken{
			T(SFWildcard, "?"),
		}},
		{line(), "$?", []wantToken{
			T(MFWildcard, "$?"),
		}},
		{line(), "$?rest", []wantToken{
			T(MFVariable, "$?rest"),
		}},
		{line(), "?*limit*", []wantToken{
			T(GblVariable, "?*limit*"),
		}},
		{line(), "$?*limit*", []wantToken{
			T(MFGblVariable, "$?*limit*"),
		}},
		{line(), "~red|blue&?x", []wantToken{
			T(NotConstraint, "~"),
			T(Symbol, "red"),
			T(OrConstraint, "|"),
			T(Symbol, "blue"),
			T(AndConstraint, "&"),
			T(SFVariable, "?x"),
		}},
		{line(), "; a comment line\nbob", []wantToken{
			T(Symbol, "bob"),
		}},
		{line(), "-12 +4 -1.5e2 .5 3e-1", []wantToken{
			T(Integer, "-12"),
			T(Integer, "4"),
			T(Float, "-150.0"),
			T(Float, "0.5"),
			T(Float, "0.3"),
		}},
		// A literal that never reaches a digit producing phase reverts
		// to a symbol.
		{line(), "- 1e +", []wantToken{
			T(Symbol, "-"),
			T(Symbol, "1e"),
			T(Symbol, "+"),
		}},
		{line(), "3..5", []wantToken{
			T(Symbol, "3..5"),
		}},
		{line(), "<- $var", []wantToken{
			T(Symbol, "<-"),
			T(Symbol, "$var"),
		}},
		{line(), `"a\"b\\c"`, []wantToken{
			T(String, `"a\"b\\c"`),
		}},
		{line(), "caf\xc3\xa9", []wantToken{
			T(Symbol, "caf\xc3\xa9"),
		}},
	} {
		e := NewEnvironment()
		tokens := tokenize(e, tt.in)
		if len(tokens) != len(tt.tokens) {
			t.Errorf("%d: got %d tokens, want %d", tt.line, len(tokens), len(tt.tokens))
			continue Tests
		}
		for i, tok := range tokens {
			if tok.Kind != tt.tokens[i].kind || tok.PrintForm != tt.tokens[i].text {
				t.Errorf("%d: token %d: got %v %q, want %v %q",
					tt.line, i, tok.Kind, tok.PrintForm, tt.tokens[i].kind, tt.tokens[i].text)
			}
		}
	}
}

func TestGetTokenValues(t *testing.T) {
	e := NewEnvironment()
	tokens := tokenize(e, `(foo 1 2.5 "hi" ?x)`)

	if got := tokens[1].SymbolValue(); got != e.FindSymbol("foo") {
		t.Errorf("got %v for foo, want the interned symbol", got)
	}
	if got := tokens[2].Value.(*IntegerHashNode).Contents; got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := tokens[3].Value.(*FloatHashNode).Contents; got != 2.5 {
		t.Errorf("got %v, want 2.5", got)
	}
	if got := tokens[4].Value.(*SymbolHashNode).Contents; got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
	// The variable's stored name excludes the ? sigil.
	if got := tokens[5].Value.(*SymbolHashNode).Contents; got != "x" {
		t.Errorf("got %q, want %q", got, "x")
	}
}

// The scanner's pretty print buffer echoes source with instance names
// re-bracketed.
func TestGetTokenPPBuffer(t *testing.T) {
	e := NewEnvironment()
	tokenize(e, "[oven-1]")
	if got := e.GetPPBuffer(); got != "[oven-1]" {
		t.Errorf("got pretty print %q, want %q", got, "[oven-1]")
	}

	e = NewEnvironment()
	tokenize(e, `"a b"`)
	if got := e.GetPPBuffer(); got != `"a b"` {
		t.Errorf("got pretty print %q, want %q", got, `"a b"`)
	}
}

func TestGlobalVariableName(t *testing.T) {
	e := NewEnvironment()
	tokens := tokenize(e, "?*limit*")
	// The surrounding asterisks are stripped from the stored name.
	if got := tokens[0].Value.(*SymbolHashNode).Contents; got != "limit" {
		t.Errorf("got stored name %q, want %q", got, "limit")
	}
}

func TestUnterminatedString(t *testing.T) {
	e := NewEnvironment()
	errbuf := &bytes.Buffer{}
	e.SetErrorWriter(errbuf)

	tokens := tokenize(e, `"no closing quote`)
	if len(tokens) != 1 || tokens[0].Kind != String {
		t.Fatalf("got %v, want one string token", tokens)
	}
	if !strings.Contains(errbuf.String(), "End-Of-File while scanning a string") {
		t.Errorf("got error output %q, want end-of-file diagnostic", errbuf.String())
	}

	// Suppressed when completion errors are ignored.
	e = NewEnvironment()
	errbuf = &bytes.Buffer{}
	e.SetErrorWriter(errbuf)
	e.SetIgnoreCompletionErrors(true)
	tokenize(e, `"no closing quote`)
	if errbuf.Len() != 0 {
		t.Errorf("got error output %q, want none", errbuf.String())
	}
}

func TestIntegerOverflowWarning(t *testing.T) {
	e := NewEnvironment()
	errbuf := &bytes.Buffer{}
	e.SetErrorWriter(errbuf)

	tokens := tokenize(e, "99999999999999999999")
	if tokens[0].Kind != Integer {
		t.Fatalf("got %v, want an integer token", tokens[0].Kind)
	}
	if !strings.Contains(errbuf.String(), "Over or underflow") {
		t.Errorf("got warning output %q, want overflow warning", errbuf.String())
	}
}

func TestCopyToken(t *testing.T) {
	e := NewEnvironment()
	src := tokenize(e, "bob")[0]
	var dst Token
	CopyToken(&dst, src)
	if dst.Kind != src.Kind || dst.Value != src.Value || dst.PrintForm != src.PrintForm {
		t.Errorf("got %+v, want %+v", dst, *src)
	}
}
