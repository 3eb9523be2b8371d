package main

import (
	"github.com/evently/evently/internal/server"
)

func main() {
	s := server.New()
	s.RegisterRoutes()
	s.Start()
}
