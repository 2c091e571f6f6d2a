package blob

import (
	"context"
	"fmt"
	"os"
)

const (
	envDriver = "ASSETLEDGER_BLOB_DRIVER"
	envFSRoot = "ASSETLEDGER_BLOB_FS_ROOT"

	defaultFSRoot = "data/blobs"
)

// Open constructs the blob store selected by the environment. With no
// configuration it returns a filesystem store rooted at data/blobs.
func Open(ctx context.Context) (Store, error) {
	driver := Driver(os.Getenv(envDriver))
	if driver == "" {
		driver = DriverFS
	}
	switch driver {
	case DriverFS:
		root := os.Getenv(envFSRoot)
		if root == "" {
			root = defaultFSRoot
		}
		return NewFSStore(root)
	case DriverS3:
		return openS3FromEnv(ctx)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
