package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sagarc03/pmsgate"
)

// Source says where a procedure argument comes from.
type Source int

const (
	// FromPath reads a chi URL parameter.
	FromPath Source = iota + 1
	// FromField reads one member of a JSON object body.
	FromField
	// FromBody passes the whole JSON body through unchanged.
	FromBody
)

// ParamType is the type an argument is bound as.
type ParamType int

const (
	TypeString ParamType = iota + 1
	TypeInt32
	TypeJSON
)

// Param binds one procedure argument.
type Param struct {
	// Arg is the procedure's parameter name.
	Arg  string
	From Source
	// Key is the URL parameter or body field name. Unused for FromBody.
	Key  string
	Type ParamType
}

// Route declares one endpoint. A route with a Static value never calls the store.
type Route struct {
	Method    string
	Pattern   string
	Procedure string
	Auth      bool
	Params    []Param
	// NotFound is the status reported when the procedure returns nothing.
	NotFound int
	Static   json.RawMessage
}

func pathInt32(key, arg string) Param {
	return Param{Arg: arg, From: FromPath, Key: key, Type: TypeInt32}
}

func pathString(key, arg string) Param {
	return Param{Arg: arg, From: FromPath, Key: key, Type: TypeString}
}

func field(key, arg string) Param {
	return Param{Arg: arg, From: FromField, Key: key, Type: TypeString}
}

func body(arg string) Param {
	return Param{Arg: arg, From: FromBody, Type: TypeJSON}
}

// Routes returns the gateway's static route table.
func Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: "/login", Procedure: "login",
			Params: []Param{field("user", "emailaddress"), field("password", "password")}, NotFound: http.StatusNotFound},

		{Method: http.MethodPost, Pattern: "/people", Procedure: "people_add", Auth: true,
			Params: []Param{body("data")}, NotFound: http.StatusNotFound},
		{Method: http.MethodGet, Pattern: "/people", Procedure: "people_get", Auth: true,
			NotFound: http.StatusNotFound},
		{Method: http.MethodGet, Pattern: "/people/{id}", Procedure: "people_get", Auth: true,
			Params: []Param{pathInt32("id", "people_id")}, NotFound: http.StatusNotFound},
		{Method: http.MethodPut, Pattern: "/people/{id}", Procedure: "people_set", Auth: true,
			Params: []Param{pathInt32("id", "people_id"), body("data")}, NotFound: http.StatusNotFound},

		{Method: http.MethodPost, Pattern: "/roles", Procedure: "roles_add", Auth: true,
			Params: []Param{body("data")}, NotFound: http.StatusNotFound},
		{Method: http.MethodGet, Pattern: "/roles", Procedure: "roles_get", Auth: true,
			NotFound: http.StatusNotFound},
		{Method: http.MethodGet, Pattern: "/roles/{id}", Procedure: "roles_get", Auth: true,
			Params: []Param{pathInt32("id", "roles_id")}, NotFound: http.StatusNotFound},
		{Method: http.MethodPut, Pattern: "/roles/{id}", Procedure: "roles_set", Auth: true,
			Params: []Param{pathInt32("id", "roles_id"), body("data")}, NotFound: http.StatusNotFound},

		{Method: http.MethodGet, Pattern: "/permissions", Procedure: "roles_permissions_get", Auth: true,
			NotFound: http.StatusNotFound},

		{Method: http.MethodGet, Pattern: "/fields", Procedure: "fields_get", Auth: true,
			NotFound: http.StatusNotFound},
		{Method: http.MethodGet, Pattern: "/fields/{table}", Procedure: "fields_get", Auth: true,
			Params: []Param{pathString("table", "ref_table")}, NotFound: http.StatusNotFound},
		// TODO: bind to fields_set(token, data) once the procedure exists in the schema.
		{Method: http.MethodPut, Pattern: "/fields", Static: json.RawMessage(`false`)},

		{Method: http.MethodPost, Pattern: "/password_forgot", Procedure: "password_forgot",
			Params: []Param{field("email", "user_email")}, NotFound: http.StatusMethodNotAllowed},
		{Method: http.MethodPost, Pattern: "/password_reset", Procedure: "password_reset",
			Params: []Param{field("token", "reset_token"), field("password", "new_password")}, NotFound: http.StatusMethodNotAllowed},
	}
}

// Call assembles the procedure call for r: the token first when the route is
// protected, then every Param in declaration order.
func (rt Route) Call(r *http.Request) (pmsgate.ProcedureCall, error) {
	call := pmsgate.ProcedureCall{
		Procedure: rt.Procedure,
		NotFound:  pmsgate.NotFoundError(rt.NotFound, MessageNoAccess),
	}

	if rt.Auth {
		token, ok := TokenFromContext(r.Context())
		if !ok {
			return call, pmsgate.AuthError(MessageUnauthorized)
		}
		call.Args = append(call.Args, pmsgate.String("token", token))
	}

	var (
		raw    []byte
		fields map[string]json.RawMessage
	)
	for _, p := range rt.Params {
		var (
			arg pmsgate.Arg
			err error
		)
		switch p.From {
		case FromPath:
			arg, err = bindPath(r, p)
		case FromBody:
			if raw, err = readBody(r, raw); err == nil {
				arg = pmsgate.JSON(p.Arg, raw)
			}
		case FromField:
			if fields == nil {
				if raw, err = readBody(r, raw); err == nil {
					fields, err = decodeObject(raw)
				}
			}
			if err == nil {
				arg, err = bindField(fields, p)
			}
		default:
			err = fmt.Errorf("param %s: unknown source %d", p.Arg, p.From)
		}
		if err != nil {
			return call, invalid(err)
		}
		call.Args = append(call.Args, arg)
	}

	return call, nil
}

func invalid(err error) error {
	var e *pmsgate.Error
	if errors.As(err, &e) {
		return e
	}
	return pmsgate.ValidationError(MessageBadRequest, err)
}

func bindPath(r *http.Request, p Param) (pmsgate.Arg, error) {
	value := chi.URLParam(r, p.Key)
	// chi routes on RawPath when it is set, so only then is the segment still escaped.
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(value)
		if err != nil {
			return pmsgate.Arg{}, fmt.Errorf("path parameter %s: %w", p.Key, err)
		}
		value = unescaped
	}

	switch p.Type {
	case TypeInt32:
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return pmsgate.Arg{}, fmt.Errorf("path parameter %s: %w", p.Key, err)
		}
		return pmsgate.Int32(p.Arg, int32(n)), nil
	case TypeString:
		return pmsgate.String(p.Arg, value), nil
	default:
		return pmsgate.Arg{}, fmt.Errorf("path parameter %s: unsupported type %d", p.Key, p.Type)
	}
}

// readBody reads the request body once and checks that it is a single JSON value.
func readBody(r *http.Request, cached []byte) ([]byte, error) {
	if cached != nil {
		return cached, nil
	}
	if r.Body == nil {
		return nil, errors.New("request body is required")
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid JSON")
	}
	return raw, nil
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if fields == nil {
		return nil, errors.New("decode body: expected a JSON object")
	}
	return fields, nil
}

func bindField(fields map[string]json.RawMessage, p Param) (pmsgate.Arg, error) {
	value, ok := fields[p.Key]
	if !ok || string(value) == "null" {
		return pmsgate.Arg{}, fmt.Errorf("field %s is required", p.Key)
	}

	switch p.Type {
	case TypeString:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return pmsgate.Arg{}, fmt.Errorf("field %s: %w", p.Key, err)
		}
		return pmsgate.String(p.Arg, s), nil
	case TypeInt32:
		var n int32
		if err := json.Unmarshal(value, &n); err != nil {
			return pmsgate.Arg{}, fmt.Errorf("field %s: %w", p.Key, err)
		}
		return pmsgate.Int32(p.Arg, n), nil
	case TypeJSON:
		return pmsgate.JSON(p.Arg, value), nil
	default:
		return pmsgate.Arg{}, fmt.Errorf("field %s: unsupported type %d", p.Key, p.Type)
	}
}
