package main

import "github.com/josephlewis42/fdsh/cmd"

func main() {
	cmd.Execute()
}
