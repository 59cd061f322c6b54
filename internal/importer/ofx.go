package importer

import (
	"fmt"

	"github.com/beevik/etree"
)

// OFXMapping is the fixed column mapping for rows produced by ParseOFX.
var OFXMapping = Mapping{
	Date:        "DTPOSTED",
	Description: "MEMO",
	Amount:      "TRNAMT",
	ExternalID:  "FITID",
}

// ParseOFX parses an OFX 2.x (XML) bank statement into the same header/row
// shape the delimited parser produces, one row per STMTTRN element. Rows
// feed the regular column mapper under OFXMapping, so row-level validation
// and drop reporting behave exactly as for delimited files. SGML-style OFX
// 1.x files are not supported.
func ParseOFX(raw string) (headers []string, rows [][]string, err error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse OFX: %v", err)
	}

	stmts := doc.FindElements("//STMTTRN")
	if len(stmts) == 0 {
		return nil, nil, fmt.Errorf("no transactions found in OFX document")
	}

	headers = []string{"DTPOSTED", "MEMO", "TRNAMT", "FITID"}
	rows = make([][]string, 0, len(stmts))
	for _, stmt := range stmts {
		memo := childText(stmt, "MEMO")
		if memo == "" {
			memo = childText(stmt, "NAME")
		}
		rows = append(rows, []string{
			ofxDate(childText(stmt, "DTPOSTED")),
			memo,
			childText(stmt, "TRNAMT"),
			childText(stmt, "FITID"),
		})
	}
	return headers, rows, nil
}

func childText(parent *etree.Element, tag string) string {
	if el := parent.FindElement("./" + tag); el != nil {
		return el.Text()
	}
	return ""
}

// ofxDate reduces an OFX timestamp (YYYYMMDDHHMMSS[.XXX][gmt offset]) to its
// YYYY-MM-DD date prefix; anything shorter is passed through untouched and
// left for the mapper to reject.
func ofxDate(s string) string {
	if len(s) < 8 {
		return s
	}
	return fmt.Sprintf("%s-%s-%s", s[0:4], s[4:6], s[6:8])
}
