package http

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteRouteTable prints one line per route: method, pattern, procedure, auth
// requirement, bound arguments and not-found status.
func WriteRouteTable(w io.Writer, routes []Route) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "METHOD\tPATH\tPROCEDURE\tAUTH\tARGS\tNOT FOUND")
	for _, rt := range routes {
		procedure, args, notFound := rt.Procedure, argList(rt), fmt.Sprint(rt.NotFound)
		if rt.Static != nil {
			procedure, args, notFound = "(static "+string(rt.Static)+")", "-", "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rt.Method, rt.Pattern, procedure, authLabel(rt.Auth), args, notFound)
	}

	return tw.Flush()
}

func authLabel(required bool) string {
	if required {
		return "token"
	}
	return "-"
}

func argList(rt Route) string {
	var args []string
	if rt.Auth {
		args = append(args, "token")
	}
	for _, p := range rt.Params {
		switch p.From {
		case FromPath:
			args = append(args, p.Arg+"<-{"+p.Key+"}")
		case FromField:
			args = append(args, p.Arg+"<-."+p.Key)
		case FromBody:
			args = append(args, p.Arg+"<-body")
		}
	}
	if len(args) == 0 {
		return "-"
	}
	return strings.Join(args, ",")
}
