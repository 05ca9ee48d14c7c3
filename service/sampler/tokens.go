package sampler

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	fieldCode
	colonCode
	digitsCode
	unitCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	fieldToken      = parsly.NewToken(fieldCode, "Field", newFieldMatcher())
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	digitsToken     = parsly.NewToken(digitsCode, "Digits", newDigitsMatcher())
	unitToken       = parsly.NewToken(unitCode, "Unit", newUnitMatcher())
)

func newFieldMatcher() parsly.Matcher {
	return &fieldMatcher{}
}

func newDigitsMatcher() parsly.Matcher {
	return &digitsMatcher{}
}

func newUnitMatcher() parsly.Matcher {
	return &unitMatcher{}
}

// fieldMatcher matches a status field name (everything up to the colon)
type fieldMatcher struct{}

func (m *fieldMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	matched := 0
	for i := pos; i < size; i++ {
		if input[i] == ':' || input[i] == '\n' {
			break
		}
		matched++
	}
	return matched
}

// digitsMatcher matches a run of decimal digits
type digitsMatcher struct{}

func (m *digitsMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if !isDigit(input[i]) {
			break
		}
		matched++
	}
	return matched
}

// unitMatcher matches the size unit suffix (kB, mB, ...)
type unitMatcher struct{}

func (m *unitMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		if !isLetter(input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
