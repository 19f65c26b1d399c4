// Command docintel answers questions over a directory of local documents.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docintel/internal/adapters/driving/cli"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/logger"
)

func main() {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	cli.SetInitializer(buildServices)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", domain.ErrorKind(err), err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}
