package commands

import (
	"fmt"
	"os"

	"github.com/dayblock/dayblock/internal/config"
	"github.com/dayblock/dayblock/internal/store"
)

// openStore loads the configuration and opens the same database the server
// uses. The caller must call the returned close func.
func openStore() (*store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	closeFn := func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
		}
	}
	return st, closeFn, nil
}
