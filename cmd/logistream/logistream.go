package main

import "github.com/Egor213/LogiStream/internal/app"

func main() {
	app.Run()
}
