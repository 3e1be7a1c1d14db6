package pmsgate

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Arg is a single named argument bound positionally into a procedure call.
// Value is always a string, an int32 or a json.RawMessage.
type Arg struct {
	Name  string
	Value any
}

// String returns a text argument.
func String(name, v string) Arg {
	return Arg{Name: name, Value: v}
}

// Int32 returns an integer argument.
func Int32(name string, v int32) Arg {
	return Arg{Name: name, Value: v}
}

// JSON returns an argument carrying an arbitrary JSON value.
func JSON(name string, raw json.RawMessage) Arg {
	return Arg{Name: name, Value: raw}
}

// ProcedureCall is a procedure name, its ordered arguments and the outcome to
// report when the call yields no result.
type ProcedureCall struct {
	Procedure string
	Args      []Arg
	NotFound  *Error
}

var validIdentifierRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidIdentifier checks if a procedure or parameter name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name) && len(name) <= 63
}

// Validate checks the procedure name, argument names and argument types.
func (c ProcedureCall) Validate() error {
	if !IsValidIdentifier(c.Procedure) {
		return fmt.Errorf("validate call: invalid procedure name: %q", c.Procedure)
	}
	if c.NotFound == nil {
		return errors.New("validate call: not-found outcome is required")
	}

	seen := make(map[string]struct{}, len(c.Args))
	for _, a := range c.Args {
		if !IsValidIdentifier(a.Name) {
			return fmt.Errorf("validate call: invalid argument name: %q", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("validate call: duplicate argument: %s", a.Name)
		}
		seen[a.Name] = struct{}{}

		switch a.Value.(type) {
		case string, int32, json.RawMessage:
		default:
			return fmt.Errorf("validate call: argument %s has unsupported type %T", a.Name, a.Value)
		}
	}
	return nil
}

// Statement renders the call in named notation with one placeholder per argument:
//
//	SELECT "people_get"("token" := $1, "people_id" := $2)
func (c ProcedureCall) Statement() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(pgx.Identifier{c.Procedure}.Sanitize())
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s := $%d", pgx.Identifier{a.Name}.Sanitize(), i+1)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Values returns the argument values in binding order.
func (c ProcedureCall) Values() []any {
	values := make([]any, len(c.Args))
	for i, a := range c.Args {
		values[i] = a.Value
	}
	return values
}
