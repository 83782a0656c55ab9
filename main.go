// Package main is the entry point of the repohealth CLI.
package main

import (
	"context"

	"github.com/huangsam/repohealth/cmd"
	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute(context.Background())
	iocache.CloseCaching()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	if err != nil {
		contract.LogFatal("Cannot run repohealth", err)
	}
}
