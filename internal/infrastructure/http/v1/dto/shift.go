package dto

// OpenShiftRequest is the request body for POST /shifts/open.
type OpenShiftRequest struct {
	OpeningBalance string `json:"openingBalance" binding:"required"`
}

// CloseShiftRequest is the request body for POST /shifts/:id/close.
type CloseShiftRequest struct {
	ActualBalance string `json:"actualBalance" binding:"required"`
	Notes         string `json:"notes,omitempty"`
}
