package main

import "github.com/cjsmocjsmo/dupchecker/cmd"

func main() {
	cmd.Execute()
}
