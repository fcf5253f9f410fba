// Command communityctl performs administrative tasks that do not belong on
// the HTTP surface: applying schema migrations and bootstrapping staff
// accounts.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
