package main

import "github.com/snaplife/apiserver/cmd"

func main() {
	cmd.Execute()
}
