// Package retrieve performs single outbound HTTP(S) exchanges with failure
// isolation.
//
// Retrieve opens one request through a Transport, buffers the complete
// response body, and reports the outcome to an OnComplete callback. Every
// failure in the request lifecycle, including panics raised by the transport
// or while reading the body, is converted into a synthetic 503 completion
// carrying the error. OnComplete runs at most once per exchange.
//
// Two transports are provided: Plain (http, default port 80) and TLS (https,
// default port 443). Both are backed by net/http and accept an optional
// outbound proxy.
package retrieve
