package dto

// TreasuryBalanceResponse is the drawer balance for a branch/time window.
type TreasuryBalanceResponse struct {
	BranchID string `json:"branchId"`
	Balance  string `json:"balance"`
}
