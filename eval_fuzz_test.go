package dtcalc_test

import (
	"testing"
	"time"

	"github.com/jrs65/dtcalc"
)

// FuzzEval checks that evaluation of any parseable input either fails with
// an evaluation error or yields a value that renders.
func FuzzEval(f *testing.F) {
	f.Add("now + 5 * 4d + 3h")
	f.Add("2015-10-21T16:29:00-07:00 - now")
	f.Add("deadline - 2w")
	f.Add("10 / (2 - 2)")
	f.Add("-now")
	f.Add("0h")
	deadline := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	f.Fuzz(func(t *testing.T, src string) {
		v, err := dtcalc.EvalString(src, dtcalc.SetVar("deadline", deadline))
		if err != nil {
			if v != nil {
				t.Errorf("evaluating %q: non-nil result %v alongside error %v", src, v, err)
			}
			return
		}
		if s := v.String(); s == "<invalid>" {
			t.Errorf("evaluating %q: unrenderable result", src)
		}
	})
}
