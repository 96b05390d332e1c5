package main

import "portapack.dev/portapack/internal/cmd/root"

func main() {
	root.Execute()
}
