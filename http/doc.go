// Package http serves the procedure gateway's route table over HTTP.
//
// Every route is declared in Routes as a procedure name plus an ordered list
// of argument bindings. A request is turned into a pmsgate.ProcedureCall and
// handed to an Invoker; the procedure's JSON result is the 200 response body
// verbatim.
//
// # Authentication
//
// Protected routes require exactly one credential header (Authorization by
// default). Its value is forwarded as the procedure's first argument, named
// token, and is never interpreted here. A missing or repeated header answers
// 401 before any path parameter or body is looked at. When a bypass token is
// configured, a request carrying it is handed to the 404 catch-all.
//
//	cfg := http.AuthConfig{Header: "Authorization"}
//	router.With(http.AuthMiddleware(cfg, nil)).Get("/people", handler)
//
// # Usage
//
//	inv, _ := pmsgate.NewInvoker(pool)
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Auth:        http.AuthConfig{},
//	    MaxBodySize: 1 << 20,
//	}, inv)
//	http.ListenAndServe(":8000", handler.Router())
//
// # Responses
//
// Failures are JSON objects with a single error field:
//
//	{"error": "Id not found (or no read access)"}
//
// Malformed input, a missing credential and an unmatched route use the fixed
// catch-all messages declared in this package. Store failures carry the
// server's own message.
package http
