// Package recipe builds, tests and runs the service from a source tree.
//
// An [Orchestrator] sequences the targets of the build recipe:
//
//	sync     go mod download
//	build    sync, then a debug compile
//	release  sync, an optimized compile with version stamps, then strip
//	run/dev  build, then execute the binary in the foreground
//	test     go test ./...
//
// Steps run strictly in order and the first failure halts the target. A
// compile writes to a staging file next to the artifact, which is promoted
// only after every step of the target succeeded; a failed target removes it.
// Every key of the env list file is exported into each command, including
// the binary started by run. Exit codes of failing tools are reported as
// [*ExitError] so callers can propagate them unchanged.
//
// Example usage:
//
//	o, err := recipe.New(ctx, recipe.Config{Root: "."}, recipe.ExecRunner{})
//	if err != nil {
//	    return err
//	}
//	artifact, err := o.Release(ctx)
package recipe
