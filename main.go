package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cube2222/relvar/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd.Execute(ctx)
}
