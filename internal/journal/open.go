package journal

import "fmt"

// StoreOptions selects and parameterizes a journal backend.
type StoreOptions struct {
	Backend    string // file | sqlite | redis
	Dir        string // file backend
	SQLitePath string // sqlite backend
	Redis      RedisStoreConfig
}

// OpenStore constructs the store named by opts.Backend.
func OpenStore(opts StoreOptions) (Store, error) {
	switch opts.Backend {
	case "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "redis":
		return NewRedisStore(opts.Redis)
	default:
		return nil, fmt.Errorf("journal: unknown backend %q", opts.Backend)
	}
}
