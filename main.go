package main

import "github.com/KaramelBytes/vdjstat/cmd"

func main() {
	cmd.Execute()
}
