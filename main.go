package main

import "github.com/ComedicChimera/minimini/src/cmd"

func main() {
	cmd.Execute()
}
