// cmd/seekone/main.go
package main

import (
	"seekone/internal/app"
	"seekone/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
