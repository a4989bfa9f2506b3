package main

import "github.com/cadhy/cadhy/cmd"

func main() {
	cmd.Execute()
}
