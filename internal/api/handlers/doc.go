package handlers

// StatusResponse is the body of the probe endpoints. Failed maps each
// unhealthy dependency to its error.
type StatusResponse struct {
	Status string            `json:"status"           example:"ready"`
	Failed map[string]string `json:"failed,omitempty"`
}
