package main

import "github.com/mvp-joe/semi/internal/cli"

func main() {
	cli.Execute()
}
