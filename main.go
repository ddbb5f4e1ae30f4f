package main

import "github.com/vietddude/memgate/internal/cli"

func main() {
	cli.Execute()
}
