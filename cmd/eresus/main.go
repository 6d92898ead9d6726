package main

import "github.com/oshokin/eresus/cmd/eresus/cmd"

func main() {
	cmd.Execute()
}
