package main

import "finley_backend/internal/app"

func main() {
	app.RunWorker()
}
