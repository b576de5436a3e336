// Command leadcentral runs the LeadCentral marketing operations server.
package main

import (
	"context"

	"github.com/dalemusser/leadcentral/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
