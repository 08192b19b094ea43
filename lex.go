package dtcalc

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a plain number token.
	tokenNum
	// tokenDur is a number with a unit suffix, e.g. 4d.
	tokenDur
	// tokenTime is an ISO 8601 timestamp.
	tokenTime
	// tokenIdent is an identifier naming a bound instant.
	tokenIdent
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open parenthesis.
	tokenOpen
	// tokenClose is a close parenthesis.
	tokenClose
)

var tokenKindNames = [...]string{
	"None", "EOF", "Num", "Dur", "Time", "Ident", "Op", "Open", "Close",
}

func (k tokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "tokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/"

// unitCodes are the duration suffix letters, each naming a fixed-length
// unit of time.
const unitCodes = "wdhms"

// unitSeconds maps a unit code to the length of the unit in seconds.
var unitSeconds = map[byte]int64{
	'w': 604800,
	'd': 86400,
	'h': 3600,
	'm': 60,
	's': 1,
}

type lexer struct {
	src io.RuneScanner
	buf strings.Builder
	// back holds runes pushed back past the one-rune window of src, so
	// that timestamp scanning can rewind to the last complete form.
	back []rune
	rune int
	p    lexToken
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("dtcalc: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("dtcalc: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// readRune reads a rune from the pushback queue or the src and updates the
// lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	if n := len(l.back); n > 0 {
		r = l.back[n-1]
		l.back = l.back[:n-1]
		l.rune++
		return r, nil
	}
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune pushes a rune back onto the input and updates the lexer's
// position info.
func (l *lexer) unreadRune(r rune) {
	l.back = append(l.back, r)
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered
// before any non-whitespace characters, the result is an EOF token with a nil
// error. Subsequent times, if the EOF token is not pushed, the result is an
// empty token with io.EOF.
func (l *lexer) next(wseof string) (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			if strings.ContainsRune(wseof, r) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			tok.pos++
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune(r)
			kind, err := l.scanNum()
			if err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = kind
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune(r)
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenIdent
			return tok, nil
		case r == '(':
			tok.text = "("
			tok.kind = tokenOpen
			return tok, nil
		case r == ')':
			tok.text = ")"
			tok.kind = tokenClose
			return tok, nil
		default:
			if strings.ContainsRune(Operators, r) {
				tok.text = string(r)
				tok.kind = tokenOp
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

// isIdentRune reports whether r may appear in an identifier after the first
// character.
func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanNum scans a number, duration, or timestamp token into l.buf. Four
// leading digits followed by a dash switch to timestamp scanning; a unit code
// directly following a complete number makes a duration, unless further
// identifier characters follow it.
func (l *lexer) scanNum() (tokenKind, error) {
	var dig, dot, e, le, ed bool
	digits := 0
scan:
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return tokenNone, err
		}
		if r == '-' && digits == 4 && l.buf.Len() == 4 {
			ok, err := l.scanTime(r)
			if err != nil {
				return tokenNone, err
			}
			if ok {
				return tokenTime, nil
			}
			// Rewound: the dash is next and ends this number.
			break
		}
		if unicode.IsSpace(r) {
			l.unreadRune(r)
			break
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune(r)
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		if strings.ContainsRune(Operators+"()", r) {
			l.unreadRune(r)
			break
		}
		switch {
		case r == '.':
			if dot || e {
				l.buf.WriteRune(r)
				return tokenNone, l.error("number")
			}
			dot, le = true, false
			l.buf.WriteRune(r)
		case r == 'e', r == 'E':
			if !dig || e {
				l.buf.WriteRune(r)
				return tokenNone, l.error("number")
			}
			e, le = true, true
			l.buf.WriteRune(r)
		case '0' <= r && r <= '9':
			if e {
				ed = true
			} else {
				dig = true
				if !dot {
					digits++
				}
			}
			le = false
			l.buf.WriteRune(r)
		case r == '_', unicode.IsLetter(r):
			if dig && !le && (!e || ed) && strings.ContainsRune(unitCodes, r) {
				nx, err := l.readRune()
				switch {
				case errors.Is(err, io.EOF):
					l.buf.WriteRune(r)
					return tokenDur, nil
				case err != nil:
					return tokenNone, err
				case !isIdentRune(nx):
					l.unreadRune(nx)
					l.buf.WriteRune(r)
					return tokenDur, nil
				default:
					// More identifier characters follow, so the letters
					// are a separate identifier token, not a unit suffix.
					l.unreadRune(nx)
				}
			}
			l.unreadRune(r)
			break scan
		default:
			l.buf.WriteRune(r)
			return tokenNone, l.error("number")
		}
	}
	if (!dig && !ed) || (e && !ed) {
		return tokenNone, l.error("number")
	}
	return tokenNum, nil
}

// scanTime scans the remainder of an ISO 8601 timestamp after a four-digit
// year already in l.buf and the dash following it. The accepted shape is a
// date, an optional time with optional seconds and fraction, and an optional
// Z or signed offset. On a shape mismatch the input rewinds to the last
// complete form, or all the way to the dash when not even the date matches,
// in which case the result is false and the caller resumes number scanning.
func (l *lexer) scanTime(dash rune) (bool, error) {
	taken := []rune{dash}
	var fail error
	next := func() (rune, bool) {
		r, err := l.readRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fail = err
			}
			return 0, false
		}
		taken = append(taken, r)
		return r, true
	}
	rewind := func(to int) {
		for len(taken) > to {
			r := taken[len(taken)-1]
			taken = taken[:len(taken)-1]
			l.unreadRune(r)
		}
	}
	digits := func(n int) bool {
		for i := 0; i < n; i++ {
			r, ok := next()
			if !ok || r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	lit := func(want rune) bool {
		r, ok := next()
		return ok && r == want
	}

	// Date: -MM-DD after the year.
	if !digits(2) || !lit('-') || !digits(2) {
		if fail != nil {
			return false, fail
		}
		rewind(0)
		return false, nil
	}
	good := len(taken)
	// Time: THH:MM, then optionally :SS, then optionally a fraction.
	if lit('T') && digits(2) && lit(':') && digits(2) {
		good = len(taken)
		if lit(':') && digits(2) {
			good = len(taken)
			if lit('.') && digits(1) {
				for {
					r, ok := next()
					if !ok {
						break
					}
					if r < '0' || r > '9' {
						rewind(len(taken) - 1)
						break
					}
				}
				good = len(taken)
			} else {
				rewind(good)
			}
		} else {
			rewind(good)
		}
	} else {
		rewind(good)
	}
	// Offset: Z or a signed hour and minute.
	if r, ok := next(); ok {
		switch {
		case r == 'Z':
			good = len(taken)
		case r == '+' || r == '-':
			if digits(2) && lit(':') && digits(2) {
				good = len(taken)
			} else {
				rewind(good)
			}
		default:
			rewind(good)
		}
	}
	rewind(good)
	if fail != nil {
		return false, fail
	}
	l.buf.WriteString(string(taken))
	if _, err := parseTime(l.buf.String()); err != nil {
		return false, l.error("timestamp")
	}
	return true, nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		if !isIdentRune(r) {
			l.unreadRune(r)
			return nil
		}
		l.buf.WriteRune(r)
	}
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune,
	}
}

// timeLayouts are the accepted timestamp forms, most specific first. Go's
// time.Parse accepts a fractional second after the seconds field in any of
// them.
var timeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02Z07:00",
	"2006-01-02",
}

// parseTime parses a timestamp literal. Forms without an offset are taken
// as UTC.
func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "timestamp", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the total number of runes scanned by the lexer up to and
	// including this error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
