package main

import "autoshop/internal/cmd"

func main() {
	cmd.Execute()
}
