package gateway

// PaymentMethod describes a way of paying supported at checkout.
type PaymentMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

var paymentMethods = []PaymentMethod{
	{ID: "upi", Name: "UPI", Description: "Google Pay, PhonePe, Paytm and other UPI apps", Enabled: true},
	{ID: "netbanking", Name: "Net Banking", Description: "All major Indian banks", Enabled: true},
	{ID: "card", Name: "Debit / Credit Card", Description: "Visa, Mastercard, RuPay", Enabled: true},
	{ID: "wallet", Name: "Wallets", Description: "Paytm, Mobikwik, Freecharge", Enabled: true},
}

// PaymentMethods returns the checkout catalogue. The slice is a copy.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}
