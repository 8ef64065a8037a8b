package server

// AddParseError is a rejected /add query with the status to answer.
type AddParseError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e AddParseError) Error() string {
	return e.Message
}
