package dtcalc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lexAll scans every token of src, not including the EOF token.
func lexAll(t *testing.T, src string) []lexToken {
	t.Helper()
	scan := lex(strings.NewReader(src))
	var toks []lexToken
	for {
		tok, err := scan.next("")
		if err != nil {
			t.Fatalf("lexing %q: unexpected error: %v", src, err)
		}
		if tok.kind == tokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLex(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		tokens []lexToken
	}{
		{"empty", "", nil},
		{"spaces", " \t \r\n ", nil},
		// numbers
		{"zero", "0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}},
		{"digits", "9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}},
		{"two", "1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}},
		{"real", "1.5", []lexToken{{text: "1.5", kind: tokenNum, pos: 1}}},
		{"leading-dot", ".5", []lexToken{{text: ".5", kind: tokenNum, pos: 1}}},
		{"exponent", "1e3", []lexToken{{text: "1e3", kind: tokenNum, pos: 1}}},
		{"signed-exponent", "1e+3", []lexToken{{text: "1e+3", kind: tokenNum, pos: 1}}},
		// durations
		{"days", "4d", []lexToken{{text: "4d", kind: tokenDur, pos: 1}}},
		{"real-days", "0.5d", []lexToken{{text: "0.5d", kind: tokenDur, pos: 1}}},
		{"weeks", "2w", []lexToken{{text: "2w", kind: tokenDur, pos: 1}}},
		{"hours", "3h", []lexToken{{text: "3h", kind: tokenDur, pos: 1}}},
		{"minutes", "2m", []lexToken{{text: "2m", kind: tokenDur, pos: 1}}},
		{"seconds", "1s", []lexToken{{text: "1s", kind: tokenDur, pos: 1}}},
		{"exponent-days", "1.5e1d", []lexToken{{text: "1.5e1d", kind: tokenDur, pos: 1}}},
		// the unit suffix must be immediately adjacent to the number
		{"spaced-unit", "5 d", []lexToken{{text: "5", kind: tokenNum, pos: 1}, {text: "d", kind: tokenIdent, pos: 3}}},
		{"suffix-then-ident", "5dx", []lexToken{{text: "5", kind: tokenNum, pos: 1}, {text: "dx", kind: tokenIdent, pos: 2}}},
		{"compound-units", "4h30m", []lexToken{{text: "4", kind: tokenNum, pos: 1}, {text: "h30m", kind: tokenIdent, pos: 2}}},
		// identifiers
		{"ident", "now", []lexToken{{text: "now", kind: tokenIdent, pos: 1}}},
		{"underscore", "_t1", []lexToken{{text: "_t1", kind: tokenIdent, pos: 1}}},
		// timestamps
		{"full", "2023-11-21T04:30:05Z", []lexToken{{text: "2023-11-21T04:30:05Z", kind: tokenTime, pos: 1}}},
		{"offset", "2023-11-21T04:30:05+07:00", []lexToken{{text: "2023-11-21T04:30:05+07:00", kind: tokenTime, pos: 1}}},
		{"negative-offset", "2023-11-21T04:30:05-07:00", []lexToken{{text: "2023-11-21T04:30:05-07:00", kind: tokenTime, pos: 1}}},
		{"fraction", "2023-11-21T04:30:05.5Z", []lexToken{{text: "2023-11-21T04:30:05.5Z", kind: tokenTime, pos: 1}}},
		{"naive", "2023-11-21T04:30:05", []lexToken{{text: "2023-11-21T04:30:05", kind: tokenTime, pos: 1}}},
		{"minutes-only", "2023-11-21T04:30", []lexToken{{text: "2023-11-21T04:30", kind: tokenTime, pos: 1}}},
		{"date-only", "2023-11-21", []lexToken{{text: "2023-11-21", kind: tokenTime, pos: 1}}},
		// timestamp backtracking
		{"year-minus", "2023-12", []lexToken{
			{text: "2023", kind: tokenNum, pos: 1},
			{text: "-", kind: tokenOp, pos: 5},
			{text: "12", kind: tokenNum, pos: 6},
		}},
		{"dangling-t", "2023-11-21T", []lexToken{
			{text: "2023-11-21", kind: tokenTime, pos: 1},
			{text: "T", kind: tokenIdent, pos: 11},
		}},
		{"partial-offset", "2023-11-21T04:30:05-07", []lexToken{
			{text: "2023-11-21T04:30:05", kind: tokenTime, pos: 1},
			{text: "-", kind: tokenOp, pos: 20},
			{text: "07", kind: tokenNum, pos: 21},
		}},
		// adjacent tokens
		{"sub-duration", "1990-10-05T12:40:30Z-400d", []lexToken{
			{text: "1990-10-05T12:40:30Z", kind: tokenTime, pos: 1},
			{text: "-", kind: tokenOp, pos: 21},
			{text: "400d", kind: tokenDur, pos: 22},
		}},
		{"padded", "  1990-10-05T12:40:30Z-400d  ", []lexToken{
			{text: "1990-10-05T12:40:30Z", kind: tokenTime, pos: 3},
			{text: "-", kind: tokenOp, pos: 23},
			{text: "400d", kind: tokenDur, pos: 24},
		}},
		{"mixed", "now+4d", []lexToken{
			{text: "now", kind: tokenIdent, pos: 1},
			{text: "+", kind: tokenOp, pos: 4},
			{text: "4d", kind: tokenDur, pos: 5},
		}},
		{"parens", "(1)", []lexToken{
			{text: "(", kind: tokenOpen, pos: 1},
			{text: "1", kind: tokenNum, pos: 2},
			{text: ")", kind: tokenClose, pos: 3},
		}},
		{"ops", "1*2", []lexToken{
			{text: "1", kind: tokenNum, pos: 1},
			{text: "*", kind: tokenOp, pos: 2},
			{text: "2", kind: tokenNum, pos: 3},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := lexAll(t, c.src)
			if diff := cmp.Diff(c.tokens, got, cmp.AllowUnexported(lexToken{})); diff != "" {
				t.Errorf("wrong tokens for %q (-want +got):\n%s", c.src, diff)
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind string
	}{
		{"symbol", "$", ""},
		{"symbol-after-num", "0$", "number"},
		{"symbol-after-space", "1 $", ""},
		{"double-dot", "1..2", "number"},
		{"bare-exponent", "1e", "number"},
		{"dot", ".", "number"},
		{"colon", "12:30", "number"},
		{"bad-month", "2023-13-01T00:00:00Z", "timestamp"},
		{"bad-day", "2023-02-30", "timestamp"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			scan := lex(strings.NewReader(c.src))
			var lexErr *LexError
			for {
				tok, err := scan.next("")
				if err == nil {
					if tok.kind == tokenEOF {
						t.Fatalf("lexing %q: no error", c.src)
					}
					continue
				}
				if !errors.As(err, &lexErr) {
					t.Fatalf("lexing %q: error %v is %T, not *LexError", c.src, err, err)
				}
				break
			}
			if lexErr.Kind != c.kind {
				t.Errorf("lexing %q: error kind %q, want %q", c.src, lexErr.Kind, c.kind)
			}
			if lexErr.Pos() <= 0 {
				t.Errorf("lexing %q: nonpositive error position %d", c.src, lexErr.Pos())
			}
		})
	}
}

func TestLexStopOn(t *testing.T) {
	scan := lex(strings.NewReader("1\n2"))
	tok, err := scan.next("\n")
	if err != nil || tok.kind != tokenNum || tok.text != "1" {
		t.Fatalf("first token: got %v, %v", tok, err)
	}
	tok, err = scan.next("\n")
	if err != nil || tok.kind != tokenEOF {
		t.Fatalf("want EOF at newline, got %v, %v", tok, err)
	}
}
