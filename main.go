package main

import "smartshop-labs/smartshop/cmd"

func main() {
	cmd.Execute()
}
