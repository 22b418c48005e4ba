package types

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// MessageBody acknowledges operations that return no record, such as deletes.
type MessageBody struct {
	Message string `json:"message"`
}

// StatusBody reports health probe results.
type StatusBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
