package exchange

import "context"

// InfoOnly is a market data client without an execution connection.
type InfoOnly struct {
	*client
}

func NewInfoOnly(cfg Config) (*InfoOnly, error) {
	c, err := newClient(cfg, false)
	if err != nil {
		return nil, err
	}
	return &InfoOnly{client: c}, nil
}

// Connect opens the market data connection and subscribes. adminPassword may
// be empty.
func (i *InfoOnly) Connect(ctx context.Context, adminPassword string) error {
	return i.connect(ctx, adminPassword, nil)
}
