package main

import "swasthya/cmd"

func main() {
	cmd.Execute()
}
