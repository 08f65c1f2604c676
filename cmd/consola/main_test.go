package main

import (
	stdtesting "testing"

	"github.com/negocios/consola/internal/app"
	_ "github.com/negocios/consola/testing"
)

func TestMainSkipsStartupInTestMode(t *stdtesting.T) {
	app.RefreshTestMode()
	if !app.InTestMode() {
		t.Fatalf("expected test mode to be enabled")
	}
	main()
}
