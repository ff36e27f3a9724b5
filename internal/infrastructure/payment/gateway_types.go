package payment

// gatewayPayoutRequest is the disbursement request body
type gatewayPayoutRequest struct {
	Reference   string         `json:"reference"`
	Amount      string         `json:"amount"`
	Currency    string         `json:"currency"`
	Method      string         `json:"method"`
	Destination map[string]any `json:"destination"`
	Description string         `json:"description,omitempty"`
}

// gatewayPayoutResponse is returned for an accepted disbursement
type gatewayPayoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// gatewayErrorResponse is returned for a rejected request
type gatewayErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Gateway statuses that mean the disbursement will not happen
var rejectedStatuses = map[string]bool{
	"rejected": true,
	"failed":   true,
	"declined": true,
}
