package cmd

import "go.uber.org/fx"

var Module = fx.Module("cli",
	fx.Provide(
		fx.Annotate(devCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(inspect, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(migrate, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(rehash, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(sanityCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(status, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(verify, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)
