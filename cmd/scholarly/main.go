package main

import "github.com/Alexandria-s-Design/bite-size-academic-sub000/cmd/handlers"

func main() {
	handlers.Execute()
}
