package main

import (
	"context"
	"os"

	"github.com/dalemusser/analysis/internal/analysis"
)

func main() {
	os.Exit(analysis.Main(context.Background()))
}
