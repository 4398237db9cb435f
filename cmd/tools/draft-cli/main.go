// cmd/tools/draft-cli/main.go
package main

import "support-copilot/internal/cli"

func main() {
	cli.Execute()
}
