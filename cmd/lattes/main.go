package main

import "github.com/Ordep1234555/lattes-analysis/cmd/lattes/cmd"

func main() {
	cmd.Execute()
}
