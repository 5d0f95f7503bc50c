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

package main

import (
	"fmt"
	"io"

	"github.com/openrules/goclp/pkg/clp"
)

func init() {
	register(&formatter{
		name: "tokens",
		f:    doTokens,
		help: "display the token stream of the input",
	})
	register(&formatter{
		name: "pp",
		f:    doPP,
		help: "display the pretty printed form of the input",
	})
}

// doTokens writes one line per token: the kind and the print form.
func doTokens(w io.Writer, e *clp.Environment, source string) {
	for {
		tok := e.GetToken(source)
		if tok.Kind == clp.Stop {
			return
		}
		fmt.Fprintf(w, "%-16s %s\n", tok.Kind, tok.PrintForm)
	}
}

// doPP scans the input to exhaustion and dumps the pretty print buffer.
func doPP(w io.Writer, e *clp.Environment, source string) {
	e.FlushPPBuffer()
	for {
		tok := e.GetToken(source)
		if tok.Kind == clp.Stop {
			break
		}
		e.SavePPBuffer(" ")
	}
	fmt.Fprintln(w, e.GetPPBuffer())
}
