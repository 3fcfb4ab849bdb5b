package main

import "github.com/sadopc/fundr/cmd"

func main() {
	cmd.Execute()
}
