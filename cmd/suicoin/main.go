package main

import (
	"os"

	"github.com/afuentes/suicoin/internal/app"
)

func main() {
	os.Exit(app.NewRunner().Run(os.Args[1:]))
}
