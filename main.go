package main

import "awsaudit/cmd"

func main() {
	cmd.Execute()
}
