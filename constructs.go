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
		name: "constructs",
		f:    doConstructs,
		help: "parse top level constructs and display a summary",
	})
}

// doConstructs reads top level forms, dispatching defmodule constructs to
// the module parser.  Other constructs are skipped to their closing
// parenthesis.  Parsing stops at end of input or when execution is
// halted.
func doConstructs(w io.Writer, e *clp.Environment, source string) {
	for {
		tok := e.GetToken(source)
		if tok.Kind == clp.Stop || e.HaltExecution {
			break
		}
		if tok.Kind != clp.LParen {
			fmt.Fprintf(w, "%s: unexpected %s\n", source, tok.PrintForm)
			skipToBalance(e, source, 0)
			continue
		}

		name := e.GetToken(source)
		if name.Kind != clp.Symbol {
			fmt.Fprintf(w, "%s: construct name must be a symbol\n", source)
			skipToBalance(e, source, 1)
			continue
		}

		switch name.SymbolValue().Contents {
		case "defmodule":
			if e.ParseDefmodule(source) {
				fmt.Fprintf(w, "defmodule: parse failed\n")
				continue
			}
			m := e.GetCurrentModule()
			fmt.Fprintf(w, "defmodule %s (%d imports, %d exports)\n",
				m.GetDefmoduleName(), countPorts(m.ImportList), countPorts(m.ExportList))
		default:
			fmt.Fprintf(w, "%s: skipped\n", name.SymbolValue().Contents)
			skipToBalance(e, source, 1)
		}
	}
}

func countPorts(list *clp.PortItem) int {
	n := 0
	for ; list != nil; list = list.Next {
		n++
	}
	return n
}

// skipToBalance consumes tokens until the parenthesis depth returns to
// zero.
func skipToBalance(e *clp.Environment, source string, depth int) {
	for depth > 0 {
		tok := e.GetToken(source)
		switch tok.Kind {
		case clp.LParen:
			depth++
		case clp.RParen:
			depth--
		case clp.Stop:
			return
		}
	}
}
