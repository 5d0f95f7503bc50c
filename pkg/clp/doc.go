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

// Package clp implements the front-end compilation core of a
// forward-chaining production rule interpreter: the lexical scanner for
// the Lisp-style surface language, the hash-consed atom tables, the
// expression and constraint model backing pattern and action compilation,
// the module system with import/export port specifications, and the
// generator that converts left hand side patterns into the pattern
// network and join network tests consumed by the match evaluator.
//
// All state hangs off an Environment; multiple environments coexist in a
// process and each must be driven from a single goroutine.
package clp
