package main

import "github.com/masmgr/gitcommits-go/cmd"

func main() {
	cmd.Run()
}
