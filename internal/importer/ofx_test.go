package importer

import (
	"testing"
)

const sampleOFX = `<?xml version="1.0" encoding="UTF-8"?>
<OFX>
  <BANKMSGSRSV1>
    <STMTTRNRS>
      <STMTRS>
        <BANKTRANLIST>
          <STMTTRN>
            <TRNTYPE>DEBIT</TRNTYPE>
            <DTPOSTED>20240105120000</DTPOSTED>
            <TRNAMT>-4.50</TRNAMT>
            <FITID>tx-001</FITID>
            <MEMO>Coffee</MEMO>
          </STMTTRN>
          <STMTTRN>
            <TRNTYPE>CREDIT</TRNTYPE>
            <DTPOSTED>20240106</DTPOSTED>
            <TRNAMT>1000.00</TRNAMT>
            <FITID>tx-002</FITID>
            <NAME>Salary</NAME>
          </STMTTRN>
        </BANKTRANLIST>
      </STMTRS>
    </STMTTRNRS>
  </BANKMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	headers, rows, err := ParseOFX(sampleOFX)
	if err != nil {
		t.Fatalf("ParseOFX failed: %v", err)
	}
	if len(headers) != 4 {
		t.Fatalf("headers = %v", headers)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	want := [][]string{
		{"2024-01-05", "Coffee", "-4.50", "tx-001"},
		{"2024-01-06", "Salary", "1000.00", "tx-002"},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("rows[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestParseOFXFeedsMapper(t *testing.T) {
	headers, rows, err := ParseOFX(sampleOFX)
	if err != nil {
		t.Fatalf("ParseOFX failed: %v", err)
	}

	records, dropped, err := MapRows(headers, rows, OFXMapping, 3)
	if err != nil {
		t.Fatalf("MapRows failed: %v", err)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped rows: %+v", dropped)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].PostedAt != "2024-01-05" || records[0].ExternalID != "tx-001" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestParseOFXErrors(t *testing.T) {
	if _, _, err := ParseOFX("not xml at all <"); err == nil {
		t.Error("expected error for malformed document")
	}
	if _, _, err := ParseOFX("<OFX><BANKMSGSRSV1></BANKMSGSRSV1></OFX>"); err == nil {
		t.Error("expected error for document without transactions")
	}
}
