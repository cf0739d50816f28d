package main

import (
	"context"
	"os"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/app"
)

func main() {
	application := app.New()  // Initialize the application
	code := application.Run() // Run the requested command
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	application.Stop(ctx) // Flush background work and close resources
	cancel()
	os.Exit(code)
}
