// socialgraph manages the database schema of the social graph: it prints
// the DDL of the models, writes golang-migrate migration files and applies
// them.
//
//	socialgraph ddl --dialect postgres
//	socialgraph -c socialgraph.yaml migrate gen init
//	socialgraph -c socialgraph.yaml migrate up
//	socialgraph -c socialgraph.yaml migrate down 1
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "socialgraph:", err)
		os.Exit(1)
	}
}
