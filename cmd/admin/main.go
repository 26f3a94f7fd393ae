// Command admin creates an Admin account in the configured store. It reads
// the same configuration as the server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/chouaib-skitou/Festivio/internal/admin"
	"github.com/chouaib-skitou/Festivio/internal/server"
	"github.com/chouaib-skitou/Festivio/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	user, err := admin.CreateInteractive(ctx, admin.Prompter{
		In:  bufio.NewReader(os.Stdin),
		Out: os.Stdout,
		Fd:  int(os.Stdin.Fd()),
	}, app.Users())
	if err != nil {
		log.Printf("%v", err)
		return
	}

	fmt.Printf("Admin %s created (id %s)\n", user.Email, user.ID)

}
