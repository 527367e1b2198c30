package main

import "github.com/sarchlab/meshprobe/cli"

func main() {
	cli.Execute()
}
