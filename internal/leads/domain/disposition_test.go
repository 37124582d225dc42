package domain

import "testing"

func TestCarriesCallback(t *testing.T) {
	carrying := map[Disposition]bool{
		Callback:       true,
		Future:         true,
		NextDaySameDay: true,
	}

	for _, d := range WellKnown {
		if got := d.CarriesCallback(); got != carrying[d] {
			t.Errorf("%s: CarriesCallback() = %v, want %v", d, got, carrying[d])
		}
	}

	if Disposition("Custom Outcome").CarriesCallback() {
		t.Error("unknown disposition must not carry a callback")
	}
}

func TestNonContact(t *testing.T) {
	nonContact := map[Disposition]bool{
		NoAnswer:     true,
		Voicemail:    true,
		Disconnected: true,
		WrongNumber:  true,
	}

	for _, d := range WellKnown {
		if got := d.NonContact(); got != nonContact[d] {
			t.Errorf("%s: NonContact() = %v, want %v", d, got, nonContact[d])
		}
	}
}

func TestQualifiedLead(t *testing.T) {
	qualified := map[Disposition]bool{
		Future:         true,
		NextDaySameDay: true,
	}

	for _, d := range WellKnown {
		if got := d.QualifiedLead(); got != qualified[d] {
			t.Errorf("%s: QualifiedLead() = %v, want %v", d, got, qualified[d])
		}
	}
}

func TestKnownAcceptsArbitraryValues(t *testing.T) {
	if !Sale.Known() {
		t.Error("Sale should be well known")
	}
	if Disposition("Spanish Line").Known() {
		t.Error("free-form values are accepted but not well known")
	}
}
