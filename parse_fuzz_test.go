package dtcalc_test

import (
	"strings"
	"testing"

	"github.com/jrs65/dtcalc"
)

// FuzzParse checks that the parser returns an error or an expression that
// formats and reparses cleanly, and never panics.
func FuzzParse(f *testing.F) {
	f.Add("now + 4d")
	f.Add("2023-11-21T04:30:05Z - 1w")
	f.Add("10d / 2")
	f.Add("5 * (16 - 4)")
	f.Add("-1.5h + release")
	f.Add("2023-12")
	f.Add("((((")
	f.Add("1e9s")
	f.Fuzz(func(t *testing.T, src string) {
		e, err := dtcalc.Parse(strings.NewReader(src))
		if err != nil {
			return
		}
		again, err := dtcalc.Parse(strings.NewReader(e.String()))
		if err != nil {
			t.Errorf("%q parsed but its formatting %q did not: %v", src, e.String(), err)
			return
		}
		if got := again.String(); got != e.String() {
			t.Errorf("%q formats as %q which reparses as %q", src, e.String(), got)
		}
	})
}
