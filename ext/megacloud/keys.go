package megacloud

import (
	"fmt"
	"sync"

	"unembed/models"
	"unembed/util"
)

// keysEndpoint serves the frequently rotated decryption keys. Package
// variable so tests can point it at a local server.
var keysEndpoint = "https://raw.githubusercontent.com/yogesh-hacker/MegacloudKeys/refs/heads/main/keys.json"

// keyTable memoizes the remote key set. Populated on first use and
// cached only on success, so a failed fetch is retried by the next call.
var keyTable = struct {
	sync.Mutex
	keys map[string]string
}{}

func remoteKey(ctx *models.ResolveContext, name string) (string, error) {
	keyTable.Lock()
	defer keyTable.Unlock()

	if keyTable.keys == nil {
		var keys map[string]string
		err := util.FetchJSON(ctx.Context, ctx.Client(), keysEndpoint, nil, &keys)
		if err != nil {
			return "", fmt.Errorf("failed to fetch key table: %w", err)
		}
		if len(keys) == 0 {
			return "", util.ErrKeysUnavailable
		}
		keyTable.keys = keys
	}
	key, ok := keyTable.keys[name]
	if !ok || key == "" {
		return "", util.ErrKeysUnavailable
	}
	return key, nil
}
