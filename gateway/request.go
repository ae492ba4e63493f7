package gateway

import "net/url"

// Request describes one API call. It is a value: retrying produces a copy
// with a higher attempt count instead of flagging shared state.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	attempt int
}

func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

func (r Request) WithQuery(q url.Values) Request {
	r.Query = q
	return r
}

func (r Request) WithBody(body any) Request {
	r.Body = body
	return r
}

// Attempt is zero for the original call and one for the retry after a refresh.
func (r Request) Attempt() int {
	return r.attempt
}

func (r Request) retry() Request {
	r.attempt++
	return r
}
