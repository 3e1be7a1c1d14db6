// Package pmsgate exposes PostgreSQL stored procedures as a JSON-over-HTTP API.
//
// Every endpoint is one parameterized procedure call. Authorization lives in the
// database: the gateway forwards the caller's opaque token as the first procedure
// argument and never interprets it.
//
// # Key Components
//
//   - ProcedureCall: procedure name, ordered named arguments, declared not-found outcome
//   - Invoker: leases one connection from a Pool, runs the call, releases the connection
//   - Classify: maps store failures onto the Error taxonomy
//   - Error: HTTP status plus message, the shape of every non-2xx response
//
// # Error Taxonomy
//
//   - KindAuth: missing or repeated credential header (401)
//   - KindValidation: malformed path parameter or request body (400)
//   - KindNotFound: the procedure returned nothing (status declared by the route)
//   - KindApplication: the procedure raised an exception (400, message passed through)
//   - KindTransport: any other store or driver failure (500, message passed through)
//
// # Example Usage
//
//	pool, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inv, err := pmsgate.NewInvoker(pool)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	raw, err := inv.Invoke(ctx, pmsgate.ProcedureCall{
//	    Procedure: "people_get",
//	    Args:      []pmsgate.Arg{pmsgate.String("token", token), pmsgate.Int32("people_id", 7)},
//	    NotFound:  pmsgate.NotFoundError(http.StatusNotFound, "Id not found (or no read access)"),
//	})
//
// See the http package for the route table and the database package for pool
// configuration.
package pmsgate
