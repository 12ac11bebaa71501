package domain

// ProviderAccount is the provider-side account a checkout quotes a deposit
// address from.
type ProviderAccount struct {
	AccountID      string `json:"account_id"`
	DepositAddress string `json:"deposit_address"`
	Blockchain     string `json:"blockchain"`
}

type PayoutDestination struct {
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	Currency          string `json:"currency"`
	CountryCode       string `json:"countryCode"`
	BankAccountType   string `json:"bankAccountType"`
	AccountHolderName string `json:"accountHolderName"`
}

type PayoutRequest struct {
	Amount      string            `json:"amount"`
	TokenSymbol string            `json:"tokenSymbol"`
	Blockchain  string            `json:"blockchain"`
	Description string            `json:"description"`
	Destination PayoutDestination `json:"destination"`
}

// ProviderPayout is the provider's acknowledgment of a payout request.
type ProviderPayout struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PayoutResult is what the orchestrator hands back to the reconciliation
// controller. It never travels as an error: a downstream payout failure shows
// up as a non-terminal Status with Err carrying the diagnostic, so callers
// are forced to handle the degraded case without aborting the webhook path.
type PayoutResult struct {
	PayoutID string           `json:"payout_id"`
	Status   WithdrawalStatus `json:"status"`
	Err      string           `json:"error,omitempty"`
}
