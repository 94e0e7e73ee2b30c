package main

import "github.com/danmuck/photohandoff/internal/logging"

func main() {
	logging.ConfigureRuntime()
	execute()
}
