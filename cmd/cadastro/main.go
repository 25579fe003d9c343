package main

import "github.com/mcoot/cadastro/internal/cli"

func main() {
	cli.Execute()
}
