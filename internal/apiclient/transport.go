package apiclient

import "net/http"

// bearerTransport добавляет токен в каждый исходящий запрос.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	token, ok := t.tokens.Token(req.Context())
	if !ok {
		return t.base.RoundTrip(req)
	}
	// RoundTripper не должен менять исходный запрос.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(r)
}
