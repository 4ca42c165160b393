package main

import "github.com/averden/invoice-ninja-mcp/cmd"

func main() {
	cmd.Execute()
}
