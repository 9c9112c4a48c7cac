package main

import "github.com/startpaged/startpaged/cmd"

func main() {
	cmd.Execute()
}
