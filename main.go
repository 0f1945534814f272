package main

import "github.com/omarwdev/feedhub/cmd"

func main() {
	cmd.Execute()
}
