// Package http serves the booking automaton over a JSON API, an HTML page and
// a server-sent event stream of session diffs.
//
// Sessions are selected with the X-Session-ID header or the ticketflow_session
// cookie; a cookie is issued when neither is present.
package http
