// main is the entry point for the hmpi CLI.
package main

import (
	"github.com/huangsam/hmpi/cmd"
	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/iocache"
)

func main() {
	defer contract.SyncLogger()

	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()

	// Deferred cleanup does not run after os.Exit, so release resources first.
	iocache.CloseCaching()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		contract.LogFatal("hmpi failed", err)
	}
}
