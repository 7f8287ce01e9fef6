package dto

// AuthzCheckResponse answers "may I perform this action".
type AuthzCheckResponse struct {
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}
