// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/0x0BSoD/mnaScraper/internal/cli"
	"github.com/0x0BSoD/mnaScraper/internal/sites/startups"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Execute(ctx, []string{startups.Name})
	cancel()
	if err != nil {
		log.Printf("[ERROR] failed to run startups scraper: %v", err)
		os.Exit(1)
	}
}
