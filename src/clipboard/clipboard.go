package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var writeMu sync.Mutex

// Init claims the system clipboard. Must be called once before Write.
func Init() error {
	return clipboard.Init()
}

// Write performs a mutex-guarded clipboard write so concurrent callers
// cannot interleave.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
