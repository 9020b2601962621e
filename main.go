package main

import "github.com/mblog/apiserver/cmd"

func main() {
	cmd.Execute()
}
