package registry

import "go.uber.org/fx"

var Module = fx.Module("registry",
	fx.Provide(NewDVVClient),
	fx.Provide(NewTraficomClient),
	fx.Provide(func(c *DVVClient) PersonRegistry { return c }),
	fx.Provide(func(c *TraficomClient) VehicleRegistry { return c }),
)
