package sampler

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/viant/parsly"
)

const residentField = "VmRSS"

// parseResidentKb extracts the resident set size in kilobytes from the
// contents of a /proc/<pid>/status file. Lines have the shape
// "Field:<tab/spaces>value [unit]".
func parseResidentKb(data []byte) (int64, error) {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		cursor := parsly.NewCursor("", line, 0)
		matched := cursor.MatchOne(fieldToken)
		if matched.Code != fieldToken.Code {
			continue
		}
		if matched.Text(cursor) != residentField {
			continue
		}
		return parseResidentValue(cursor)
	}
	return 0, fmt.Errorf("no %s field in status data", residentField)
}

func parseResidentValue(cursor *parsly.Cursor) (int64, error) {
	matched := cursor.MatchOne(colonToken)
	if matched.Code != colonToken.Code {
		return 0, cursor.NewError(colonToken)
	}
	matched = cursor.MatchAfterOptional(whitespaceToken, digitsToken)
	if matched.Code != digitsToken.Code {
		return 0, cursor.NewError(digitsToken)
	}
	value, err := strconv.ParseInt(matched.Text(cursor), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed %s value: %w", residentField, err)
	}
	matched = cursor.MatchAfterOptional(whitespaceToken, unitToken)
	if matched.Code != unitToken.Code {
		return 0, cursor.NewError(unitToken)
	}
	if unit := matched.Text(cursor); unit != "kB" {
		return 0, fmt.Errorf("unexpected %s unit: %q", residentField, unit)
	}
	return value, nil
}
