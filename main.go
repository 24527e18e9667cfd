package main

import "github.com/josephlewis42/rshd/cmd"

func main() {
	cmd.Execute()
}
