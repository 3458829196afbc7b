package main

import "tracktray/internal/cli"

func main() {
	cli.Execute()
}
