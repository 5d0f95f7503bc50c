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

// Program goclp reads rule language source files, reports errors, and
// writes something related to the input on output.
//
// Usage: goclp [--format FORMAT] [FILE ...]
//
// Each FILE is read and fed through the front-end compilation core.  If no
// files are specified then standard input is read.
//
// FORMAT, which defaults to "tokens", specifies the output to produce.
// Use "goclp --help" for a list of available formats.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/openrules/goclp/pkg/clp"
	"github.com/pborman/getopt"
)

// Each format must register a formatter with register.  The function f is
// called once per named input source after it has been opened on the
// environment.
type formatter struct {
	name  string
	f     func(w io.Writer, e *clp.Environment, source string)
	help  string
	flags *getopt.Set
}

var formatters = map[string]*formatter{}

func register(f *formatter) {
	formatters[f.name] = f
}

// exitIfError writes errs to standard error and exits with an exit status
// of 1.  If errs is empty then exitIfError does nothing and simply
// returns.
func exitIfError(errs []error) {
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		stop(1)
	}
}

var stop = os.Exit

func main() {
	format := "tokens"
	formatFlag := getopt.StringLong("format", 0, format, "format to display")
	help := getopt.BoolLong("help", '?', "display help")
	getopt.SetParameters("[FILE ...]")

	getopt.Parse()

	if *help {
		getopt.CommandLine.PrintUsage(os.Stderr)
		fmt.Fprintf(os.Stderr, "\nFormats:\n")
		for _, f := range formatters {
			fmt.Fprintf(os.Stderr, "    %s - %s\n", f.name, f.help)
		}
		stop(0)
	}

	format = *formatFlag
	ff, ok := formatters[format]
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: invalid format.  Use one of:", format)
		for name := range formatters {
			fmt.Fprintf(os.Stderr, " %s", name)
		}
		fmt.Fprintln(os.Stderr)
		stop(1)
	}

	files := getopt.Args()

	e := clp.NewEnvironment()
	e.AddPortConstructItem("deftemplate", clp.Symbol)
	e.AddPortConstructItem("defrule", clp.Symbol)

	var errs []error
	if len(files) == 0 {
		data, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			exitIfError([]error{err})
		}
		e.OpenStringSource("stdin", string(data))
		ff.f(os.Stdout, e, "stdin")
	}
	for _, name := range files {
		data, err := ioutil.ReadFile(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.OpenStringSource(name, string(data))
		ff.f(os.Stdout, e, name)
		e.CloseStringSource(name)
	}
	exitIfError(errs)
	stop(0)
}
