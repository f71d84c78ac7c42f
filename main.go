package main

import "kwreport/cmd"

func main() {
	cmd.Execute()
}
