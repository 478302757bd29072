// Package http exposes the recording workspace over a small local JSON API.
//
// The router exposes the following endpoints:
//   - POST /events: capture ingest for a browser extension or desktop agent.
//     Body is a raw event. 202 with {"admitted":true,"event"} when recorded,
//     200 with {"admitted":false,"reason"} when the capture policy drops it,
//     422 for malformed events and 409 when no session is in flight.
//   - GET /session returns the in-flight session and its elapsed time. POST
//     /session starts one from {"name","profileType","ticketId","tags"}.
//   - POST /session/pause, /session/resume, /session/complete drive the
//     lifecycle of the in-flight session.
//   - GET /sessions lists the active session followed by the archive.
//   - GET /templates lists built-in then user templates.
//   - GET /presets filters the preset library with ?profile=&category=&tag=&q=.
//   - GET /articles?profile= lists saved articles, DELETE /articles/{id}
//     removes one.
//   - GET /profile returns the active profile, its effective preferences and
//     the catalog. PUT /profile switches profile and/or replaces the custom
//     preferences.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
