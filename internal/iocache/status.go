package iocache

import (
	"fmt"

	"github.com/huangsam/repohealth/internal/contract"
	"github.com/huangsam/repohealth/schema"
)

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format(contract.DateTimeFormat))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format(contract.DateTimeFormat))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}
