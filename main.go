package main

import "github.com/rsecloud/research-management/cmd"

func main() {
	cmd.Execute()
}
