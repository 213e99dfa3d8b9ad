package main

import "github.com/relieftools/reliefmap/internal/cmd"

func main() {
	cmd.Execute()
}
