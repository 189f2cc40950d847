/*
attribution.go - Payment attribution engine

PURPOSE:
  Pure computation over (price, per-party collected amounts). Given what
  each party has collected, derives the payment status; at booking
  creation, decides which party the initial paid amount belongs to.

INVARIANTS:
  1. DETERMINISTIC: status is a pure function of price and attribution
  2. NON-NEGATIVE: no collected amount may go negative, ever
  3. ONE-SHOT ATTRIBUTION: the booked_by inference runs once, at
     creation. Later payment updates overwrite the three fields exactly
     as supplied, with no further inference.

OVER-COLLECTION:
  Collected totals above the price are accepted, not rejected. The
  status becomes Paid and the revenue report surfaces the negative
  balance so operators can see reconciliation errors. See aggregate.go.
*/
package booking

// Attribution is the split of collected money across the three parties
// that can take payment for a booking.
type Attribution struct {
	Agent  Money
	Center Money
	Admin  Money
}

// Total is the sum collected across all parties.
func (a Attribution) Total() Money {
	return a.Agent.Add(a.Center).Add(a.Admin)
}

// Validate rejects negative amounts. Over-collection is not an error.
func (a Attribution) Validate() error {
	if a.Agent.IsNegative() {
		return NewValidationError("agent_collected", "must not be negative")
	}
	if a.Center.IsNegative() {
		return NewValidationError("center_collected", "must not be negative")
	}
	if a.Admin.IsNegative() {
		return NewValidationError("admin_collected", "must not be negative")
	}
	return nil
}

// DeriveStatus computes the payment status from the price and the
// attribution.
//
// The balance check runs first: a zero-price booking with nothing
// collected is Paid, not Unpaid.
func DeriveStatus(price Money, a Attribution) PaymentStatus {
	total := a.Total()
	balance := price.Sub(total)

	switch {
	case balance.Sign() <= 0:
		return PaymentPaid
	case total.Sign() > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// AttributeInitial assigns the amount paid at booking time to a party
// based on who made the booking:
//
//   - an agent name (anything that is not "Customer" or "Center")
//     collected it on the agent ledger
//   - "Center" collected it at the desk
//   - a customer self-booking records nothing at creation; collection
//     happens later through a payment update
func AttributeInitial(bookedBy string, paid Money) Attribution {
	att := Attribution{
		Agent:  ZeroMoney(),
		Center: ZeroMoney(),
		Admin:  ZeroMoney(),
	}
	switch bookedBy {
	case BookedByCustomer:
		// Nothing recorded at creation time.
	case BookedByCenter:
		att.Center = paid
	default:
		att.Agent = paid
	}
	return att
}
