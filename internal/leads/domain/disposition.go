// Package domain holds the lead domain vocabulary shared by the disposition
// engine, reporting, and transport layers.
package domain

// Disposition is the outcome code an agent records after working a lead.
// The well-known values below drive classification; anything else is accepted
// as-is and simply becomes part of the known set for filtering, so new codes
// can appear without a deploy.
type Disposition string

const (
	NoAnswer           Disposition = "NA"
	DoNotCall          Disposition = "DNC"
	AlreadyProvisioned Disposition = "ADP"
	WrongNumber        Disposition = "WN"
	Voicemail          Disposition = "VM"
	Disconnected       Disposition = "DC"
	NextDaySameDay     Disposition = "ND/SD"
	Future             Disposition = "FUTURE"
	Kicked             Disposition = "KICKED"
	NotInterested      Disposition = "NI"
	HungUp             Disposition = "HU"
	Callback           Disposition = "Callback"
	Sale               Disposition = "Sale"
)

// WellKnown lists the fixed vocabulary in display order.
var WellKnown = []Disposition{
	NoAnswer, DoNotCall, AlreadyProvisioned, WrongNumber, Voicemail,
	Disconnected, NextDaySameDay, Future, Kicked, NotInterested,
	HungUp, Callback, Sale,
}

// Known reports whether d belongs to the fixed vocabulary.
func (d Disposition) Known() bool {
	switch d {
	case NoAnswer, DoNotCall, AlreadyProvisioned, WrongNumber, Voicemail,
		Disconnected, NextDaySameDay, Future, Kicked, NotInterested,
		HungUp, Callback, Sale:
		return true
	}
	return false
}

// CarriesCallback reports whether d may have a scheduled follow-up attached.
// Dispositions outside this set never carry a callback, even when the caller
// supplies a date and time.
func (d Disposition) CarriesCallback() bool {
	switch d {
	case Callback, Future, NextDaySameDay:
		return true
	}
	return false
}

// NonContact reports whether d means the call never reached a person.
// These are excluded from the contact-rate numerator.
func (d Disposition) NonContact() bool {
	switch d {
	case NoAnswer, Voicemail, Disconnected, WrongNumber:
		return true
	}
	return false
}

// QualifiedLead reports whether d counts as a lead outcome for the
// conversion-rate numerator.
func (d Disposition) QualifiedLead() bool {
	switch d {
	case Future, NextDaySameDay:
		return true
	}
	return false
}

func (d Disposition) String() string { return string(d) }
