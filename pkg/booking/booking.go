package booking

import (
	"sync"

	"github.com/aretw0/ticketflow/pkg/automaton"
	"github.com/aretw0/ticketflow/pkg/domain"
	"github.com/aretw0/ticketflow/pkg/dsl"
)

// States of the booking workflow.
const (
	Start         domain.State = "start"
	LoggedIn      domain.State = "logged_in"
	JourneySel    domain.State = "journey_sel"
	Availability  domain.State = "availability"
	ClassSel      domain.State = "class_sel"
	PassengerInfo domain.State = "passenger_info"
	PaymentTry    domain.State = "payment_try"
	TicketIssued  domain.State = "ticket_issued"
	Error         domain.State = "error"
	NoAvailable   domain.State = "no_availability"
)

// Input symbols of the booking workflow.
const (
	Auth    domain.Symbol = "auth"
	Select  domain.Symbol = "select"
	AvailOK domain.Symbol = "avail_ok"
	AvailNo domain.Symbol = "avail_no"
	Choose  domain.Symbol = "choose"
	Details domain.Symbol = "details"
	PayOK   domain.Symbol = "pay_ok"
	PayFail domain.Symbol = "pay_fail"
	Cancel  domain.Symbol = "cancel"
	Timeout domain.Symbol = "timeout"
	Search  domain.Symbol = "search"
)

// Builder returns the booking workflow declared with the dsl package.
// Every move not listed falls through to Error.
func Builder() *dsl.Builder {
	b := dsl.New().
		Alphabet(Auth, Select, AvailOK, AvailNo, Choose, Details, PayOK, PayFail, Cancel, Timeout, Search).
		Start(Start)

	b.Add(Start).On(Auth, LoggedIn).Loop(Search).Otherwise(Error)
	b.Add(LoggedIn).On(Select, JourneySel).Loop(Search).Otherwise(Error)
	b.Add(JourneySel).On(AvailOK, Availability).On(AvailNo, NoAvailable).Loop(Search).Otherwise(Error)
	b.Add(Availability).On(Choose, ClassSel).Loop(Search).Otherwise(Error)
	b.Add(ClassSel).On(Details, PassengerInfo).Loop(Search).Otherwise(Error)
	b.Add(PassengerInfo).On(PayOK, TicketIssued).On(PayFail, PaymentTry).Loop(Search).Otherwise(Error)
	// Searching is not tolerated once a payment has failed.
	b.Add(PaymentTry).On(PayOK, TicketIssued).Otherwise(Error)
	b.Add(TicketIssued).Accepting().Sink()
	b.Error(Error)
	b.Add(NoAvailable).Sink()
	return b
}

var (
	tableOnce sync.Once
	table     *automaton.Table
	tableErr  error
)

// NewTable returns the validated booking transition table.
// The table is immutable and shared by every caller.
func NewTable() (*automaton.Table, error) {
	tableOnce.Do(func() {
		table, tableErr = Builder().Build()
	})
	return table, tableErr
}

// MustTable is like NewTable but panics on an invalid declaration.
func MustTable() *automaton.Table {
	t, err := NewTable()
	if err != nil {
		panic(err)
	}
	return t
}

var legend = map[domain.Symbol]string{
	Auth:    "login/auth",
	Select:  "select journey",
	AvailOK: "availability OK",
	AvailNo: "availability NO",
	Choose:  "choose class/seat",
	Details: "enter passenger details",
	PayOK:   "payment OK",
	PayFail: "payment FAIL",
	Cancel:  "cancel",
	Timeout: "timeout",
	Search:  "search trains",
}

// Legend returns the display text of every symbol.
func Legend() map[domain.Symbol]string {
	out := make(map[domain.Symbol]string, len(legend))
	for k, v := range legend {
		out[k] = v
	}
	return out
}

// Describe returns the display text of s, or s itself when it has none.
func Describe(s domain.Symbol) string {
	if text, ok := legend[s]; ok {
		return text
	}
	return string(s)
}
