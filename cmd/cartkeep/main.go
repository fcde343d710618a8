// Command cartkeep serves and maintains cart sessions.
//
//	cartkeep migrate           apply the database schema
//	cartkeep serve             run the HTTP server and the sweep schedule
//	cartkeep sweep [--async]   delete expired carts once
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
