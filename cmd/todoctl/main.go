package main

import "todoctl/pkg/cli"

func main() {
	cli.Execute()
}
