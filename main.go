package main

import "safecss/cmd"

func main() {
	cmd.Execute()
}
