// Package importing runs the CSV upload pipeline: parse, stage to object
// storage, and load in the background.
package importing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"callcenter_backend/internal/leads/repository"
	"callcenter_backend/platform/phone"
)

// RowError records why one CSV row was skipped.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// headerAliases maps the column names seen in the wild onto lead fields.
var headerAliases = map[string]string{
	"name":             "name",
	"full name":        "name",
	"phone":            "phone",
	"phone number":     "phone",
	"address":          "address",
	"alt contact":      "altContact",
	"altcontact":       "altContact",
	"alt_contact":      "altContact",
	"product":          "product",
	"prev company":     "prevCompany",
	"prevcompany":      "prevCompany",
	"prev_company":     "prevCompany",
	"previous company": "prevCompany",
}

// ParseLeads reads a headered CSV into import rows. Rows without a phone
// number are skipped and reported, never fatal; only an unreadable file or a
// header with no recognizable columns fails the whole parse.
func ParseLeads(r io.Reader, listName, customID string) ([]repository.ImportedLead, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	fields := make(map[int]string, len(header))
	for i, col := range header {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			fields[i] = field
		}
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("no recognizable columns in header %v", header)
	}

	var leads []repository.ImportedLead
	var skipped []RowError
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}

		lead := repository.ImportedLead{ListName: listName, CustomID: customID}
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch fields[i] {
			case "name":
				lead.Name = value
			case "phone":
				lead.Phone = value
			case "address":
				lead.Address = value
			case "altContact":
				lead.AltContact = value
			case "product":
				lead.Product = value
			case "prevCompany":
				lead.PrevCompany = value
			}
		}

		if lead.Name == "" && lead.Phone == "" {
			continue // blank row
		}
		if lead.Phone == "" {
			skipped = append(skipped, RowError{Line: line, Reason: "missing phone number"})
			continue
		}
		lead.PhoneKey = phone.MatchKey(lead.Phone)
		leads = append(leads, lead)
	}

	return leads, skipped, nil
}
