package main

import "wrkbench/cmd"

func main() {
	cmd.Execute()
}
