package importing

import (
	"strings"
	"testing"
)

func TestParseLeads(t *testing.T) {
	input := strings.Join([]string{
		"Name,Phone,Address,Alt Contact,Product,Prev Company",
		"Pat Doe,555-555-1000,12 Main St,555-555-2000,Internet,Acme",
		"Sam Roe,555-555-3000,,,TV,",
	}, "\n")

	leads, skipped, err := ParseLeads(strings.NewReader(input), "august-list", "C-9")
	if err != nil {
		t.Fatalf("ParseLeads: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skips: %v", skipped)
	}
	if len(leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(leads))
	}

	first := leads[0]
	if first.Name != "Pat Doe" || first.Phone != "555-555-1000" {
		t.Errorf("first row = %+v", first)
	}
	if first.ListName != "august-list" || first.CustomID != "C-9" {
		t.Errorf("list metadata not applied: %+v", first)
	}
	if first.PhoneKey == "" {
		t.Error("phone key should be derived from the phone number")
	}
}

func TestParseLeadsSkipsRowsWithoutPhone(t *testing.T) {
	input := strings.Join([]string{
		"name,phone",
		"No Phone,",
		"Has Phone,5551000",
	}, "\n")

	leads, skipped, err := ParseLeads(strings.NewReader(input), "list", "")
	if err != nil {
		t.Fatalf("ParseLeads: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("got %d leads, want 1", len(leads))
	}
	if len(skipped) != 1 || skipped[0].Line != 2 {
		t.Errorf("skipped = %v, want line 2", skipped)
	}
}

func TestParseLeadsIgnoresBlankRows(t *testing.T) {
	input := "name,phone\n,\nPat,5551000\n"

	leads, skipped, err := ParseLeads(strings.NewReader(input), "list", "")
	if err != nil {
		t.Fatalf("ParseLeads: %v", err)
	}
	if len(leads) != 1 || len(skipped) != 0 {
		t.Errorf("leads=%d skipped=%d, want 1 and 0", len(leads), len(skipped))
	}
}

func TestParseLeadsUnrecognizableHeader(t *testing.T) {
	if _, _, err := ParseLeads(strings.NewReader("foo,bar\n1,2\n"), "list", ""); err == nil {
		t.Fatal("expected an error for a header with no known columns")
	}
}

func TestParseLeadsHeaderAliases(t *testing.T) {
	input := "Full Name,Phone Number,prev_company\nPat,5551000,Acme\n"

	leads, _, err := ParseLeads(strings.NewReader(input), "list", "")
	if err != nil {
		t.Fatalf("ParseLeads: %v", err)
	}
	if len(leads) != 1 || leads[0].PrevCompany != "Acme" {
		t.Errorf("aliases not honored: %+v", leads)
	}
}
