// interceptd CLI - rule validation and dry-run tooling for the
// interception engine.
package main

import "github.com/getmockd/interceptd/pkg/cli"

func main() {
	cli.Execute()
}
