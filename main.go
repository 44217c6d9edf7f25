package main

import "tem/cli"

func main() {
	cli.Execute()
}
