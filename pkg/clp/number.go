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

// This file produces the canonical print forms for atomic values.  Floats
// always print with a decimal point or an exponent so they re-scan as
// floats; strings are re-escaped so they re-scan to the same contents.

import (
	"fmt"
	"strconv"
	"strings"
)

// floatToString renders number so it round-trips through the scanner as a
// float.
func floatToString(number float64) string {
	s := strconv.FormatFloat(number, 'g', -1, 64)
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}

// longIntegerToString renders number in base 10.
func longIntegerToString(number int64) string {
	return strconv.FormatInt(number, 10)
}

// stringPrintForm wraps str in double quotes, escaping embedded quotes and
// backslashes.
func stringPrintForm(str string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(str[i])
	}
	b.WriteByte('"')
	return b.String()
}

// PrintAtom writes the print form of an atomic value to logicalName.
func (e *Environment) PrintAtom(logicalName string, kind Kind, value interface{}) {
	switch kind {
	case Float:
		e.PrintRouter(logicalName, floatToString(value.(*FloatHashNode).Contents))
	case Integer:
		e.PrintRouter(logicalName, longIntegerToString(value.(*IntegerHashNode).Contents))
	case Symbol:
		e.PrintRouter(logicalName, value.(*SymbolHashNode).Contents)
	case String:
		e.PrintRouter(logicalName, stringPrintForm(value.(*SymbolHashNode).Contents))
	case InstanceName:
		e.PrintRouter(logicalName, "["+value.(*SymbolHashNode).Contents+"]")
	case SFVariable:
		e.PrintRouter(logicalName, "?"+value.(*SymbolHashNode).Contents)
	case MFVariable:
		e.PrintRouter(logicalName, "$?"+value.(*SymbolHashNode).Contents)
	case GblVariable:
		e.PrintRouter(logicalName, "?*"+value.(*SymbolHashNode).Contents+"*")
	case MFGblVariable:
		e.PrintRouter(logicalName, "$?*"+value.(*SymbolHashNode).Contents+"*")
	case ExternalAddress:
		x := value.(*ExternalAddressHashNode)
		if t := e.externalAddressType(x.Type); t != nil && t.ShortPrint != nil {
			t.ShortPrint(e, logicalName, x)
			return
		}
		e.PrintRouter(logicalName, fmt.Sprintf("<Pointer-%d-%p>", x.Type, x))
	case Void:
	default:
		e.PrintRouter(logicalName, kind.String())
	}
}
