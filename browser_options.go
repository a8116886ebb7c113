package homedex

// BrowserOption configures a single browse session.
type BrowserOption func(*browserConfig)

type browserConfig struct {
	pageSize  int
	batchSize int
}

// PageSize overrides the client's default display page size for this
// browser.
func PageSize(n int) BrowserOption {
	return func(c *browserConfig) {
		c.pageSize = n
	}
}

// BatchSize overrides the client's default backend fetch size for this
// browser.
func BatchSize(n int) BrowserOption {
	return func(c *browserConfig) {
		c.batchSize = n
	}
}
