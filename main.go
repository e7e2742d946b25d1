package main

import "github.com/frahmantamala/access-bridge/cmd"

func main() {
	cmd.Execute()
}
