// Package chat decodes chat requests sent by the browser client and flattens
// them into the plain turns the prompt templates consume.
package chat

// ErrorResponse is the JSON body returned for any request that fails before
// the response stream starts.
type ErrorResponse struct {
	Error string `json:"error"`
}
