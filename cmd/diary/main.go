package main

import "github.com/anilblsn/sevenappsCase/internal/cli"

func main() {
	cli.Main()
}
