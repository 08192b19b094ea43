package main

import (
	"strings"
	"testing"

	"github.com/jrs65/dtcalc"
)

func TestEvalStream(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("2019-04-05T07:00:00Z + 4d\n\n  10d / 2  \n")
	if err := evalStream(dtcalc.NewContext(), in, false, &out); err != nil {
		t.Fatal(err)
	}
	want := "2019-04-09T07:00:00Z\n5d\n"
	if got := out.String(); got != want {
		t.Errorf("got output %q, want %q", got, want)
	}
}

// A line that fails to parse must not swallow the lines after it.
func TestEvalStreamContinuesAfterError(t *testing.T) {
	var out strings.Builder
	in := strings.NewReader("4 5\n6\n10d / 2\n")
	err := evalStream(dtcalc.NewContext(), in, false, &out)
	if err == nil {
		t.Error("no error for a stream with a bad line")
	}
	want := "6\n5d\n"
	if got := out.String(); got != want {
		t.Errorf("got output %q, want %q", got, want)
	}
}

func TestEvalStreamEcho(t *testing.T) {
	var out strings.Builder
	if err := evalStream(dtcalc.NewContext(), strings.NewReader("4 * 4d\n"), true, &out); err != nil {
		t.Fatal(err)
	}
	want := "((4) * (4d)) : 16d\n"
	if got := out.String(); got != want {
		t.Errorf("got output %q, want %q", got, want)
	}
}
