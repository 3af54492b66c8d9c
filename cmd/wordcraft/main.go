package main

import "github.com/mcoot/wordcraft/internal/cli"

func main() {
	cli.Execute()
}
