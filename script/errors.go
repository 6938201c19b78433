package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

func errPredicateNotBoolean(v lua.LValue) error {
	return fmt.Errorf("return type of predicate function not boolean (got %s)", v.Type().String())
}
