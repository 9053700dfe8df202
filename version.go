package storefront

import "github.com/verdemarket/storefront/core"

// Version is the current client version
const Version = core.Version
