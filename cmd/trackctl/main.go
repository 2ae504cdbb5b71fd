package main

import "github.com/bassista/trackctl/cmd/trackctl/subcmd"

func main() {
	subcmd.Execute()
}
