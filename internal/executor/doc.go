/*
Package executor is the HTTP client for the keyword extraction service.

# Endpoints

	POST /extract      JSON body {text, top_n, ng_min, ng_max}
	POST /extract_pdf  multipart body: file, top_n, ng_min, ng_max
	GET  /             health banner

Requests are encoded by package request; this package only sends them and
decodes the answer into types.ExtractionResult.

# Errors

Any non-2xx status, and any 2xx body carrying an "error" field, becomes a
*ServiceError. MessageFrom turns an error into the text shown to the user:
the service message when one was supplied, GenericFailureMessage otherwise.
Describe categorises transport failures (refused, DNS, TLS, timeout) for
logs and CLI output.

# Transport

The client supports TLS/mTLS settings and an optional bearer token, sent
through an oauth2 static token source. No overall timeout is set unless
Options.Timeout is non-zero.
*/
package executor
