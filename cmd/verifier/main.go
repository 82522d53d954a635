package main

import (
	"vouch/internal/app"
	httptransport "vouch/internal/transport/http"
)

func main() {
	app.Run(httptransport.RoleVerifier)
}
