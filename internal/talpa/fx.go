package talpa

import "go.uber.org/fx"

var Module = fx.Module("talpa",
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) OrderFetcher { return c }),
	fx.Provide(NewService),
)
