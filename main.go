package main

import "github.com/HatsuSixty/loisp/cmd"

func main() {
	cmd.Execute()
}
