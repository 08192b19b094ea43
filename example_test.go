package dtcalc_test

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrs65/dtcalc"
)

func ExampleEvalString() {
	v, err := dtcalc.EvalString("2019-04-05T07:00:00Z + 4d")
	if err != nil {
		panic(err)
	}
	fmt.Println(v)
	// Output: 2019-04-09T07:00:00Z
}

func ExampleContext_Eval() {
	release := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	ctx := dtcalc.NewContext(dtcalc.SetVar("release", release))
	e, err := dtcalc.Parse(strings.NewReader("release - 2w + 3h"))
	if err != nil {
		panic(err)
	}
	fmt.Println(ctx.Eval(e))
	// Output: 2024-03-01T12:00:00Z
}

func ExampleExpr_Vars() {
	e, err := dtcalc.Parse(strings.NewReader("deadline - now"))
	if err != nil {
		panic(err)
	}
	fmt.Println(e.Vars())
	// Output: [deadline now]
}
