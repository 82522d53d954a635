package main

import (
	"vouch/internal/app"
	httptransport "vouch/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	app.Run(httptransport.RoleIssuer)
}
