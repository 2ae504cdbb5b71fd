// Package schedule converts schedule time expressions between their canonical
// string form and an editable structured form.
//
// A canonical expression is either a 24-hour clock time ("18:45") or an offset
// from an astronomical anchor ("sunset-00:30"). The grammar is closed: offsets
// are always non-negative HH:MM values, so a minus sign can only be the offset
// sign.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
)

// ReferenceTime marks an expression that is a plain wall-clock time rather
// than an anchor offset.
const ReferenceTime = "time"

// Anchors lists the astronomical reference points in match precedence order.
// Valid input contains at most one of them.
var Anchors = []string{"sunrise", "sunset", "dawn", "dusk", "noon"}

// TimeExpr is the editable form of a schedule time expression. It is derived
// from the canonical string and never persisted directly.
type TimeExpr struct {
	Reference string `json:"reference"`
	Sign      string `json:"sign"`
	Offset    string `json:"offset"`
}

var offsetPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Parse decodes a canonical expression into its editable form. Unrecognized
// strings parse as plain times; use Validate to reject malformed input.
func Parse(s string) TimeExpr {
	for _, anchor := range Anchors {
		if !strings.Contains(s, anchor) {
			continue
		}
		sign := "+"
		if strings.Contains(s, "-") {
			sign = "-"
		}
		offset := strings.ReplaceAll(s, anchor, "")
		offset = strings.ReplaceAll(offset, "+", "")
		offset = strings.ReplaceAll(offset, "-", "")
		return TimeExpr{
			Reference: anchor,
			Sign:      sign,
			Offset:    strings.TrimSpace(offset),
		}
	}
	return TimeExpr{
		Reference: ReferenceTime,
		Sign:      "+",
		Offset:    s,
	}
}

// Format encodes the editable form back to its canonical string.
func (e TimeExpr) Format() string {
	if e.Reference == ReferenceTime {
		return e.Offset
	}
	return e.Reference + e.Sign + e.Offset
}

// Validate checks that the expression is inside the closed grammar: a known
// reference, a "+" or "-" sign, and an HH:MM offset.
func (e TimeExpr) Validate() error {
	if e.Reference != ReferenceTime {
		known := false
		for _, anchor := range Anchors {
			if e.Reference == anchor {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown reference %q", e.Reference)
		}
	}
	if e.Sign != "+" && e.Sign != "-" {
		return fmt.Errorf("invalid sign %q", e.Sign)
	}
	if !offsetPattern.MatchString(e.Offset) {
		return fmt.Errorf("offset %q is not a valid HH:MM time", e.Offset)
	}
	return nil
}
