package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugRunKey struct{}

// EnableDebugMode marks a context so that the CDebug methods of every logger log under it, whatever
// their level. `runName` tags the run; an empty name is replaced with a random one.
func EnableDebugMode(ctx context.Context, runName string) context.Context {
	if runName == "" {
		runName = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugRunKey{}, runName)
}

// debugRunName returns the name EnableDebugMode tagged the context with, or "".
func debugRunName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(debugRunKey{}).(string)
	return name
}
