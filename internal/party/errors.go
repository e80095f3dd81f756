package party

import "net/http"

// partyError carries the HTTP status a failed action maps to. The
// message is rendered verbatim to the caller.
type partyError struct {
	status int
	msg    string
}

func (e *partyError) Error() string {
	return e.msg
}

func errNotFound(msg string) *partyError {
	return &partyError{status: http.StatusNotFound, msg: msg}
}

func errConflict(msg string) *partyError {
	return &partyError{status: http.StatusConflict, msg: msg}
}

func errUnauthorized(msg string) *partyError {
	return &partyError{status: http.StatusUnauthorized, msg: msg}
}

func errInvalidInput(msg string) *partyError {
	return &partyError{status: http.StatusBadRequest, msg: msg}
}

func errUpstream(msg string) *partyError {
	return &partyError{status: http.StatusBadGateway, msg: msg}
}
